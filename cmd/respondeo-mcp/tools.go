package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSearchDocumentsTool returns the search_documents tool definition
func createSearchDocumentsTool() mcp.Tool {
	return mcp.NewTool("search_documents",
		mcp.WithDescription("Search the Respondeo knowledge base using semantic vector search"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 10, max: 50)"),
		),
	)
}

// createGetDocumentTool returns the get_document tool definition
func createGetDocumentTool() mcp.Tool {
	return mcp.NewTool("get_document",
		mcp.WithDescription("Retrieve a single document chunk by its unique ID"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID (format: doc_{uuid})"),
		),
	)
}

// createGetSourceFileTool returns the get_source_file tool definition
func createGetSourceFileTool() mcp.Tool {
	return mcp.NewTool("get_source_file",
		mcp.WithDescription("Retrieve the full indexed content of a knowledge file, assembled from its chunks"),
		mcp.WithString("source_path",
			mcp.Required(),
			mcp.Description("Path of the file relative to the knowledge directory"),
		),
	)
}

// createListSourceFilesTool returns the list_source_files tool definition
func createListSourceFilesTool() mcp.Tool {
	return mcp.NewTool("list_source_files",
		mcp.WithDescription("List all files currently indexed in the knowledge base"),
	)
}

package chat

// System prompt for document_search mode. Answers must come from the
// retrieved context, with an explicit no-match sentinel so the pipeline can
// detect when retrieval produced nothing usable.
const DocumentSearchSystemPrompt = `You are an internal knowledge assistant that locates company documents.

Given the CONTEXT DOCUMENTS below, answer the user's question using only
information found in those documents.

Rules:
1. Base your answer strictly on the context documents. Do not use outside knowledge.
2. Summarize what the relevant documents say and point the user at them.
3. If none of the context documents are relevant to the question, reply with exactly:
` + NoMatchAnswer + `
4. Be concise and answer in clear, readable Markdown.`

// System prompt for inquiry mode. The model may answer freely; retrieved
// documents are offered as reference candidates, not authority.
const InquirySystemPrompt = `You are an internal helpdesk assistant answering questions about company policies, procedures, and general topics.

CONTEXT DOCUMENTS may be provided below. Treat them as reference material
that might be related to the question, not as the only allowed source.

Rules:
1. Answer the question directly and helpfully.
2. Prefer information from the context documents when it applies, but you may draw on general knowledge.
3. If you cannot answer the question at all, reply with exactly:
` + InquiryNoMatchAnswer + `
4. Be concise and answer in clear, readable Markdown.`

// Prompt used to rewrite a follow-up question into a standalone search query.
// Only applied when the session already has history.
const CondenseQuestionPrompt = `Given the conversation so far and the latest user question, rewrite the latest question as a single standalone question that makes sense without the conversation. Preserve the user's intent and any named entities. Do not answer the question. Reply with the rewritten question only.`

const (
	// NoMatchAnswer is the exact sentinel the document_search prompt
	// instructs the model to return when retrieval found nothing relevant
	NoMatchAnswer = "No matching documents were found for your question. Please try rephrasing it."

	// InquiryNoMatchAnswer is the inquiry-mode equivalent. When the model
	// returns this sentinel verbatim, the advisory note and source
	// candidates are suppressed from the recorded turn.
	InquiryNoMatchAnswer = "I could not find an answer to your question. Please try rephrasing it."

	// UnknownModeAnswer is shown when a request carries a mode the service
	// does not recognize
	UnknownModeAnswer = "The current answering mode is unknown. Please select a mode and send your question again."

	// InquiryNote is the advisory text shown above inquiry-mode source
	// candidates
	InquiryNote = "The following sources may be related to your question and are shown for reference."
)

// Diagnostic messages substituted for the answer when a pipeline stage fails.
// Each is joined with CommonErrorSuffix before display.
const (
	RetrievalErrorMessage  = "Document retrieval failed."
	GenerationErrorMessage = "Answer generation failed."
	HistoryErrorMessage    = "The conversation history could not be updated."
)

// CommonErrorSuffix is appended to every diagnostic answer
const CommonErrorSuffix = "Please wait a moment and try again. If the problem persists, contact the administrator."

// BuildErrorAnswer joins a stage diagnostic with the shared administrator
// contact line
func BuildErrorAnswer(message string) string {
	return message + "\n" + CommonErrorSuffix
}

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/models"
)

// pageContent is one unit of loaded source text. Non-PDF sources produce a
// single entry with Page 0; PDFs produce one entry per page, 1-based.
type pageContent struct {
	Page     int
	Markdown string
}

// loadedFile is the normalized form of a knowledge file before chunking
type loadedFile struct {
	SourceType string
	Title      string
	Pages      []pageContent
}

// loader reads knowledge files and normalizes them to markdown
type loader struct {
	logger  arbor.ILogger
	tempDir string
}

func newLoader(logger arbor.ILogger) *loader {
	tempDir := filepath.Join(os.TempDir(), "respondeo-pdf")
	os.MkdirAll(tempDir, 0755)

	return &loader{
		logger:  logger,
		tempDir: tempDir,
	}
}

// Load reads a file and returns its markdown content split into pages
func (l *loader) Load(path string) (*loadedFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return l.loadPlain(path, models.SourceTypeMarkdown)
	case ".txt":
		return l.loadPlain(path, models.SourceTypeText)
	case ".html", ".htm":
		return l.loadHTML(path)
	case ".pdf":
		return l.loadPDF(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

func (l *loader) loadPlain(path string, sourceType string) (*loadedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := string(content)
	title := titleFromPath(path)
	if sourceType == models.SourceTypeMarkdown {
		if heading := firstHeading(text); heading != "" {
			title = heading
		}
	}

	return &loadedFile{
		SourceType: sourceType,
		Title:      title,
		Pages:      []pageContent{{Page: 0, Markdown: text}},
	}, nil
}

func (l *loader) loadHTML(path string) (*loadedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = titleFromPath(path)
	}

	// Strip chrome that carries no content
	doc.Find("script, style, nav, header, footer").Remove()

	body, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(body) == "" {
		body, _ = doc.Html()
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	return &loadedFile{
		SourceType: models.SourceTypeHTML,
		Title:      title,
		Pages:      []pageContent{{Page: 0, Markdown: markdown}},
	}, nil
}

// loadPDF extracts text per page so citations can carry page numbers
func (l *loader) loadPDF(path string) (*loadedFile, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(l.tempDir, fmt.Sprintf("pages_%d", os.Getpid()))
	os.MkdirAll(outDir, 0755)
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract PDF content: %w", err)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	pages := make([]pageContent, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		pages = append(pages, pageContent{Page: pageNum, Markdown: text})
	}

	if len(pages) == 0 {
		l.logger.Warn().Str("path", path).Msg("PDF produced no extractable text")
	}

	return &loadedFile{
		SourceType: models.SourceTypePDF,
		Title:      titleFromPath(path),
		Pages:      pages,
	}, nil
}

// titleFromPath derives a display title from the file name
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// firstHeading returns the text of the first markdown heading, if any
func firstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		}
	}
	return ""
}

package ingest

import (
	"strings"
)

// splitMarkdown splits markdown text into chunks of at most chunkSize bytes,
// preferring paragraph boundaries. Consecutive chunks overlap by roughly
// overlap bytes so sentences near a boundary stay searchable in both.
func splitMarkdown(text string, chunkSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 || len(text) <= chunkSize {
		return []string{text}
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}

	paragraphs := splitParagraphs(text)

	var chunks []string
	var current strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, para := range paragraphs {
		// Oversized paragraph gets split on its own
		if len(para) > chunkSize {
			flush()
			for _, piece := range splitLongText(para, chunkSize, overlap) {
				chunks = append(chunks, piece)
			}
			continue
		}

		if current.Len() > 0 && current.Len()+len(para)+2 > chunkSize {
			tail := overlapTail(current.String(), overlap)
			flush()
			if tail != "" {
				current.WriteString(tail)
				current.WriteString("\n\n")
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}

// splitParagraphs breaks markdown on blank lines, keeping headings attached
// to the paragraph that follows them
func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")

	var paragraphs []string
	var pendingHeading string

	for _, block := range raw {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if strings.HasPrefix(block, "#") && !strings.Contains(block, "\n") {
			if pendingHeading != "" {
				paragraphs = append(paragraphs, pendingHeading)
			}
			pendingHeading = block
			continue
		}
		if pendingHeading != "" {
			block = pendingHeading + "\n\n" + block
			pendingHeading = ""
		}
		paragraphs = append(paragraphs, block)
	}
	if pendingHeading != "" {
		paragraphs = append(paragraphs, pendingHeading)
	}

	return paragraphs
}

// splitLongText splits text with no usable paragraph boundaries, breaking at
// sentence ends or whitespace where possible
func splitLongText(text string, chunkSize, overlap int) []string {
	var chunks []string

	for len(text) > chunkSize {
		cut := chunkSize
		if idx := strings.LastIndexAny(text[:chunkSize], ".!?\n"); idx > chunkSize/2 {
			cut = idx + 1
		} else if idx := strings.LastIndexByte(text[:chunkSize], ' '); idx > chunkSize/2 {
			cut = idx
		}

		chunk := strings.TrimSpace(text[:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= 0 || next >= len(text) {
			next = cut
		}
		text = strings.TrimSpace(text[next:])
	}

	if text != "" {
		chunks = append(chunks, text)
	}

	return chunks
}

// overlapTail returns up to overlap bytes from the end of text, starting at a
// word boundary
func overlapTail(text string, overlap int) string {
	text = strings.TrimSpace(text)
	if overlap <= 0 || len(text) <= overlap {
		return ""
	}

	tail := text[len(text)-overlap:]
	if idx := strings.IndexByte(tail, ' '); idx >= 0 {
		tail = tail[idx+1:]
	}
	return strings.TrimSpace(tail)
}

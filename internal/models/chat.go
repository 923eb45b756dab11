package models

import (
	"strconv"
	"time"
)

// ChatMode selects how a user message is answered
type ChatMode string

const (
	// ChatModeDocumentSearch answers strictly from retrieved documents and
	// returns authoritative citations
	ChatModeDocumentSearch ChatMode = "document_search"

	// ChatModeInquiry answers general questions, offering retrieved documents
	// as reference candidates rather than authoritative sources
	ChatModeInquiry ChatMode = "inquiry"
)

// IsValid reports whether the mode is one of the supported values
func (m ChatMode) IsValid() bool {
	return m == ChatModeDocumentSearch || m == ChatModeInquiry
}

// TurnRole identifies the author of a conversation turn
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// SourceRef is a citation attached to an assistant turn. Path identifies the
// source file or URL, Page is the 1-based PDF page (0 for non-PDF sources).
type SourceRef struct {
	Path       string  `json:"path"`
	Page       int     `json:"page,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
	IsLink     bool    `json:"is_link,omitempty"`
}

// Label returns the display form of the citation, with the page suffix for
// PDF sources
func (s SourceRef) Label() string {
	if s.Page > 0 {
		return s.Path + " (page " + strconv.Itoa(s.Page) + ")"
	}
	return s.Path
}

// ConversationTurn is a single display entry in a session's conversation log.
// Turns are append-only: a session's log grows monotonically and existing
// turns are never rewritten.
type ConversationTurn struct {
	ID        string      `json:"id"` // turn_{uuid}
	SessionID string      `json:"session_id"`
	Seq       int         `json:"seq"` // Position within the session, starting at 0
	Role      TurnRole    `json:"role"`
	Content   string      `json:"content"`
	Mode      ChatMode    `json:"mode,omitempty"` // Mode active when the turn was produced
	Note      string      `json:"note,omitempty"` // Advisory text shown under the answer (inquiry mode)
	Sources   []SourceRef `json:"sources,omitempty"`
	IsError   bool        `json:"is_error,omitempty"` // Set when the content is a substituted diagnostic
	CreatedAt time.Time   `json:"created_at"`
}

// ChatSession holds a session's conversation state: the display log and the
// parallel LLM-facing message history used for context in later turns.
type ChatSession struct {
	ID        string             `json:"id"` // sess_{uuid}
	Title     string             `json:"title,omitempty"`
	Turns     []ConversationTurn `json:"turns"`
	History   []HistoryMessage   `json:"history"` // LLM-facing history, role + plain text only
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// HistoryMessage is the LLM-facing form of a turn: role and text, no
// citations or notes
type HistoryMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

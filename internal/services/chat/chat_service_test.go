package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// fakeLLM scripts Chat responses in call order
type fakeLLM struct {
	responses []string
	errs      []error
	calls     [][]interfaces.Message
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, messages)
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if err != nil {
		return "", err
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return "", fmt.Errorf("unexpected chat call %d", idx)
}

func (f *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeCloud }
func (f *fakeLLM) Close() error                          { return nil }

// fakeSearch returns a fixed result set or error
type fakeSearch struct {
	docs    []*models.ScoredDocument
	err     error
	queries []string
}

func (f *fakeSearch) Search(ctx context.Context, query string, limit int) ([]*models.ScoredDocument, error) {
	f.queries = append(f.queries, query)
	return f.docs, f.err
}

func (f *fakeSearch) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*models.ScoredDocument, error) {
	return f.docs, f.err
}

// fakeSessions is an in-memory session store tracking turn and history appends
type fakeSessions struct {
	session    *models.ChatSession
	historyErr error
	turnErr    error
	getErr     error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		session: &models.ChatSession{ID: "sess_test"},
	}
}

func (f *fakeSessions) Create(ctx context.Context) (*models.ChatSession, error) {
	return f.session, nil
}

func (f *fakeSessions) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session, nil
}

func (f *fakeSessions) GetOrCreate(ctx context.Context, id string) (*models.ChatSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session, nil
}

func (f *fakeSessions) AppendTurn(ctx context.Context, sessionID string, turn models.ConversationTurn) (*models.ConversationTurn, error) {
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	turn.Seq = len(f.session.Turns)
	f.session.Turns = append(f.session.Turns, turn)
	return &turn, nil
}

func (f *fakeSessions) AppendHistory(ctx context.Context, sessionID string, msg models.HistoryMessage) error {
	if f.historyErr != nil {
		return f.historyErr
	}
	f.session.History = append(f.session.History, msg)
	return nil
}

func (f *fakeSessions) History(ctx context.Context, sessionID string, limit int) ([]models.HistoryMessage, error) {
	return f.session.History, nil
}

func (f *fakeSessions) List(ctx context.Context) ([]*models.ChatSession, error) {
	return []*models.ChatSession{f.session}, nil
}

func (f *fakeSessions) Delete(ctx context.Context, id string) error { return nil }

func testDocs() []*models.ScoredDocument {
	return []*models.ScoredDocument{
		{
			Document: &models.Document{
				ID:              "doc_1",
				SourceType:      models.SourceTypeMarkdown,
				SourcePath:      "guides/onboarding.md",
				Title:           "Onboarding",
				ContentMarkdown: "Welcome to the company.",
			},
			Similarity: 0.91,
		},
		{
			Document: &models.Document{
				ID:              "doc_2",
				SourceType:      models.SourceTypePDF,
				SourcePath:      "policies/leave.pdf",
				Title:           "Leave Policy",
				ContentMarkdown: "Annual leave accrues monthly.",
				Page:            3,
			},
			Similarity: 0.84,
		},
	}
}

func newTestService(llm *fakeLLM, search *fakeSearch, sessions *fakeSessions) *Service {
	cfg := common.NewDefaultConfig()
	return NewService(llm, search, sessions, nil, cfg, arbor.NewLogger())
}

func TestRespondRequiresMessage(t *testing.T) {
	svc := newTestService(&fakeLLM{}, &fakeSearch{}, newFakeSessions())

	_, err := svc.Respond(context.Background(), &interfaces.ChatRequest{Mode: models.ChatModeInquiry})
	assert.Error(t, err)

	_, err = svc.Respond(context.Background(), nil)
	assert.Error(t, err)
}

func TestRespondSessionLoadFailure(t *testing.T) {
	sessions := newFakeSessions()
	sessions.getErr = fmt.Errorf("store unavailable")
	svc := newTestService(&fakeLLM{}, &fakeSearch{}, sessions)

	_, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "hello",
		Mode:    models.ChatModeDocumentSearch,
	})
	assert.Error(t, err)
}

func TestRespondUnknownMode(t *testing.T) {
	sessions := newFakeSessions()
	llm := &fakeLLM{}
	search := &fakeSearch{}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "hello",
		Mode:    models.ChatMode("summarize"),
	})
	require.NoError(t, err)

	assert.Equal(t, UnknownModeAnswer, resp.Answer)
	assert.Equal(t, models.ChatMode("summarize"), resp.Mode)
	assert.Empty(t, resp.Sources)

	// No retrieval or generation happened
	assert.Empty(t, llm.calls)
	assert.Empty(t, search.queries)

	// Both turns logged, history untouched
	require.Len(t, sessions.session.Turns, 2)
	assert.Equal(t, models.TurnRoleUser, sessions.session.Turns[0].Role)
	assert.Equal(t, UnknownModeAnswer, sessions.session.Turns[1].Content)
	assert.Empty(t, sessions.session.History)
}

func TestRespondRetrievalFailure(t *testing.T) {
	sessions := newFakeSessions()
	search := &fakeSearch{err: fmt.Errorf("index offline")}
	svc := newTestService(&fakeLLM{}, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "where is the leave policy?",
		Mode:    models.ChatModeDocumentSearch,
	})
	require.NoError(t, err)

	assert.True(t, resp.IsError)
	assert.True(t, strings.HasPrefix(resp.Answer, RetrievalErrorMessage))
	assert.True(t, strings.HasSuffix(resp.Answer, CommonErrorSuffix))
	assert.Empty(t, resp.Sources)

	// Diagnostic turns never enter the LLM-facing history
	assert.Empty(t, sessions.session.History)
	require.Len(t, sessions.session.Turns, 2)
	assert.True(t, sessions.session.Turns[1].IsError)
}

func TestRespondGenerationFailure(t *testing.T) {
	sessions := newFakeSessions()
	search := &fakeSearch{docs: testDocs()}
	llm := &fakeLLM{errs: []error{fmt.Errorf("rate limited")}}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "where is the leave policy?",
		Mode:    models.ChatModeDocumentSearch,
	})
	require.NoError(t, err)

	assert.True(t, resp.IsError)
	assert.True(t, strings.HasPrefix(resp.Answer, GenerationErrorMessage))
	assert.True(t, strings.HasSuffix(resp.Answer, CommonErrorSuffix))

	// Retrieval succeeded, so the diagnostic still carries the citations
	assert.Len(t, resp.Sources, 2)
	assert.Empty(t, sessions.session.History)
}

func TestRespondDocumentSearchSuccess(t *testing.T) {
	sessions := newFakeSessions()
	search := &fakeSearch{docs: testDocs()}
	llm := &fakeLLM{responses: []string{"The leave policy is in policies/leave.pdf."}}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "where is the leave policy?",
		Mode:    models.ChatModeDocumentSearch,
	})
	require.NoError(t, err)

	assert.False(t, resp.IsError)
	assert.Equal(t, "The leave policy is in policies/leave.pdf.", resp.Answer)
	assert.Empty(t, resp.Note)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "guides/onboarding.md", resp.Sources[0].Path)
	assert.Equal(t, 3, resp.Sources[1].Page)

	// Successful exchange extends the LLM-facing history with the pair
	require.Len(t, sessions.session.History, 2)
	assert.Equal(t, "user", sessions.session.History[0].Role)
	assert.Equal(t, "where is the leave policy?", sessions.session.History[0].Content)
	assert.Equal(t, "assistant", sessions.session.History[1].Role)

	// Empty history skips the condense round trip
	require.Len(t, llm.calls, 1)
	assert.Equal(t, "system", llm.calls[0][0].Role)
	assert.Contains(t, llm.calls[0][0].Content, "CONTEXT DOCUMENTS:")
}

func TestRespondDocumentSearchNoMatch(t *testing.T) {
	sessions := newFakeSessions()
	search := &fakeSearch{docs: testDocs()}
	llm := &fakeLLM{responses: []string{NoMatchAnswer}}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "what is the wifi password?",
		Mode:    models.ChatModeDocumentSearch,
	})
	require.NoError(t, err)

	// Sentinel answers carry no citations
	assert.Equal(t, NoMatchAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.False(t, resp.IsError)

	// The exchange still counts as successful generation
	assert.Len(t, sessions.session.History, 2)
}

func TestRespondInquirySuccess(t *testing.T) {
	sessions := newFakeSessions()
	search := &fakeSearch{docs: testDocs()}
	llm := &fakeLLM{responses: []string{"Leave accrues monthly."}}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "how does leave accrue?",
		Mode:    models.ChatModeInquiry,
	})
	require.NoError(t, err)

	assert.Equal(t, InquiryNote, resp.Note)
	assert.Len(t, resp.Sources, 2)
}

func TestRespondInquiryNoMatch(t *testing.T) {
	sessions := newFakeSessions()
	search := &fakeSearch{docs: testDocs()}
	llm := &fakeLLM{responses: []string{InquiryNoMatchAnswer}}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "how do I fly to the moon?",
		Mode:    models.ChatModeInquiry,
	})
	require.NoError(t, err)

	assert.Equal(t, InquiryNoMatchAnswer, resp.Answer)
	assert.Empty(t, resp.Note)
	assert.Empty(t, resp.Sources)
}

func TestRespondInquiryNoSourcesOmitsNote(t *testing.T) {
	sessions := newFakeSessions()
	search := &fakeSearch{}
	llm := &fakeLLM{responses: []string{"General knowledge answer."}}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "what is a vector index?",
		Mode:    models.ChatModeInquiry,
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Sources)
	assert.Empty(t, resp.Note)
}

func TestRespondCondensesFollowUps(t *testing.T) {
	sessions := newFakeSessions()
	sessions.session.History = []models.HistoryMessage{
		{Role: "user", Content: "where is the leave policy?"},
		{Role: "assistant", Content: "The leave policy is in policies/leave.pdf."},
	}
	search := &fakeSearch{docs: testDocs()}
	llm := &fakeLLM{responses: []string{
		"How many days of annual leave do employees get?",
		"Twenty days.",
	}}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "how many days do I get?",
		Mode:    models.ChatModeDocumentSearch,
	})
	require.NoError(t, err)
	assert.Equal(t, "Twenty days.", resp.Answer)

	// First call condenses, second answers
	require.Len(t, llm.calls, 2)
	assert.Equal(t, CondenseQuestionPrompt, llm.calls[0][0].Content)

	// Retrieval used the condensed question
	require.Len(t, search.queries, 1)
	assert.Equal(t, "How many days of annual leave do employees get?", search.queries[0])
}

func TestRespondCondenseFailureFallsBackToRawMessage(t *testing.T) {
	sessions := newFakeSessions()
	sessions.session.History = []models.HistoryMessage{
		{Role: "user", Content: "where is the leave policy?"},
		{Role: "assistant", Content: "In policies/leave.pdf."},
	}
	search := &fakeSearch{docs: testDocs()}
	llm := &fakeLLM{
		responses: []string{"", "Twenty days."},
		errs:      []error{fmt.Errorf("condense timeout"), nil},
	}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "how many days do I get?",
		Mode:    models.ChatModeDocumentSearch,
	})
	require.NoError(t, err)

	assert.Equal(t, "Twenty days.", resp.Answer)
	assert.False(t, resp.IsError)
	require.Len(t, search.queries, 1)
	assert.Equal(t, "how many days do I get?", search.queries[0])
}

func TestRespondHistoryUpdateFailureStillAnswers(t *testing.T) {
	sessions := newFakeSessions()
	sessions.historyErr = fmt.Errorf("disk full")
	search := &fakeSearch{docs: testDocs()}
	llm := &fakeLLM{responses: []string{"Twenty days."}}
	svc := newTestService(llm, search, sessions)

	resp, err := svc.Respond(context.Background(), &interfaces.ChatRequest{
		Message: "how many days do I get?",
		Mode:    models.ChatModeDocumentSearch,
	})
	require.NoError(t, err)

	assert.Equal(t, "Twenty days.", resp.Answer)
	assert.False(t, resp.IsError)
	assert.Empty(t, sessions.session.History)
}

func TestBuildMessagesOrdering(t *testing.T) {
	svc := newTestService(&fakeLLM{}, &fakeSearch{}, newFakeSessions())

	history := []models.HistoryMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
	}

	messages := svc.buildMessages(models.ChatModeInquiry, "second question", history, testDocs())

	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "CONTEXT DOCUMENTS:")
	assert.Equal(t, "first question", messages[1].Content)
	assert.Equal(t, "first answer", messages[2].Content)
	assert.Equal(t, "second question", messages[3].Content)
}

func TestBuildErrorAnswer(t *testing.T) {
	answer := BuildErrorAnswer(RetrievalErrorMessage)
	assert.Equal(t, RetrievalErrorMessage+"\n"+CommonErrorSuffix, answer)
}

package sessions

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// memStorage is an in-memory SessionStorage for tests
type memStorage struct {
	sessions map[string]*models.ChatSession
	saveErr  error
}

func newMemStorage() *memStorage {
	return &memStorage{sessions: make(map[string]*models.ChatSession)}
}

func (m *memStorage) SaveSession(ctx context.Context, session *models.ChatSession) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *memStorage) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, interfaces.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *memStorage) ListSessions(ctx context.Context) ([]*models.ChatSession, error) {
	out := make([]*models.ChatSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStorage) DeleteSession(ctx context.Context, id string) error {
	if _, ok := m.sessions[id]; !ok {
		return interfaces.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memStorage) CountSessions(ctx context.Context) (int, error) {
	return len(m.sessions), nil
}

func newTestService() (*Service, *memStorage) {
	storage := newMemStorage()
	return NewService(storage, arbor.NewLogger()), storage
}

func TestCreateSeedsGreeting(t *testing.T) {
	svc, _ := newTestService()

	session, err := svc.Create(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(session.ID, "sess_"))
	require.Len(t, session.Turns, 1)
	assert.Equal(t, models.TurnRoleAssistant, session.Turns[0].Role)
	assert.Equal(t, greeting, session.Turns[0].Content)
	assert.Equal(t, 0, session.Turns[0].Seq)
	assert.Equal(t, session.ID, session.Turns[0].SessionID)
	assert.Empty(t, session.History)
}

func TestGetOrCreate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.GetOrCreate(ctx, "")
	require.NoError(t, err)

	// Existing ID returns the same session
	found, err := svc.GetOrCreate(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Unknown ID falls back to creating a new session
	fresh, err := svc.GetOrCreate(ctx, "sess_missing")
	require.NoError(t, err)
	assert.NotEqual(t, "sess_missing", fresh.ID)
}

func TestGetUnknownSession(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), "sess_missing")
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
}

func TestAppendTurnAssignsSequence(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	session, err := svc.Create(ctx)
	require.NoError(t, err)

	first, err := svc.AppendTurn(ctx, session.ID, models.ConversationTurn{
		Role:    models.TurnRoleUser,
		Content: "where is the leave policy?",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Seq)
	assert.True(t, strings.HasPrefix(first.ID, "turn_"))

	second, err := svc.AppendTurn(ctx, session.ID, models.ConversationTurn{
		Role:    models.TurnRoleAssistant,
		Content: "In policies/leave.pdf.",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Seq)

	stored, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, stored.Turns, 3)

	// Earlier turns are untouched
	assert.Equal(t, greeting, stored.Turns[0].Content)
	assert.Equal(t, "where is the leave policy?", stored.Turns[1].Content)
}

func TestFirstUserTurnTitlesSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	session, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.Empty(t, session.Title)

	_, err = svc.AppendTurn(ctx, session.ID, models.ConversationTurn{
		Role:    models.TurnRoleUser,
		Content: "where is the leave policy?",
	})
	require.NoError(t, err)

	stored, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "where is the leave policy?", stored.Title)

	// Later user turns do not retitle
	_, err = svc.AppendTurn(ctx, session.ID, models.ConversationTurn{
		Role:    models.TurnRoleUser,
		Content: "a different question",
	})
	require.NoError(t, err)

	stored, err = svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "where is the leave policy?", stored.Title)
}

func TestAppendHistoryAndLimit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	session, err := svc.Create(ctx)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		err := svc.AppendHistory(ctx, session.ID, models.HistoryMessage{
			Role:    role,
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	all, err := svc.History(ctx, session.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	limited, err := svc.History(ctx, session.ID, 4)
	require.NoError(t, err)
	require.Len(t, limited, 4)
	assert.Equal(t, "message 2", limited[0].Content)
	assert.Equal(t, "message 5", limited[3].Content)
}

func TestDeleteSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	session, err := svc.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, session.ID))

	_, err = svc.Get(ctx, session.ID)
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)

	assert.Error(t, svc.Delete(ctx, session.ID))
}

func TestTitleFromMessage(t *testing.T) {
	assert.Equal(t, "short question", titleFromMessage("short question"))
	assert.Equal(t, "first line", titleFromMessage("first line\nsecond line"))

	long := strings.Repeat("word ", 30)
	title := titleFromMessage(long)
	assert.LessOrEqual(t, len(title), 63)
	assert.True(t, strings.HasSuffix(title, "..."))
}

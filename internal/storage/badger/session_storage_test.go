package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

func newTestSessionStorage(t *testing.T) interfaces.SessionStorage {
	t.Helper()
	return NewSessionStorage(newTestDB(t), arbor.NewLogger())
}

func TestSessionSaveAndGet(t *testing.T) {
	storage := newTestSessionStorage(t)
	ctx := context.Background()

	session := &models.ChatSession{
		ID:    "sess_1",
		Title: "leave policy",
		Turns: []models.ConversationTurn{
			{ID: "turn_1", SessionID: "sess_1", Seq: 0, Role: models.TurnRoleAssistant, Content: "hello"},
		},
		History: []models.HistoryMessage{
			{Role: "user", Content: "hi"},
		},
	}

	require.NoError(t, storage.SaveSession(ctx, session))
	assert.False(t, session.CreatedAt.IsZero())

	got, err := storage.GetSession(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, "leave policy", got.Title)
	require.Len(t, got.Turns, 1)
	assert.Equal(t, "hello", got.Turns[0].Content)
	require.Len(t, got.History, 1)
}

func TestSessionNotFound(t *testing.T) {
	storage := newTestSessionStorage(t)

	_, err := storage.GetSession(context.Background(), "sess_missing")
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
}

func TestSessionRequiresID(t *testing.T) {
	storage := newTestSessionStorage(t)

	err := storage.SaveSession(context.Background(), &models.ChatSession{})
	assert.Error(t, err)
}

func TestSessionUpsertPreservesCreatedAt(t *testing.T) {
	storage := newTestSessionStorage(t)
	ctx := context.Background()

	session := &models.ChatSession{ID: "sess_1"}
	require.NoError(t, storage.SaveSession(ctx, session))
	created := session.CreatedAt

	time.Sleep(5 * time.Millisecond)

	session.Title = "updated"
	require.NoError(t, storage.SaveSession(ctx, session))

	got, err := storage.GetSession(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Title)
	assert.Equal(t, created.Unix(), got.CreatedAt.Unix())
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestSessionListOrdering(t *testing.T) {
	storage := newTestSessionStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveSession(ctx, &models.ChatSession{ID: "sess_old"}))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, storage.SaveSession(ctx, &models.ChatSession{ID: "sess_new"}))

	sessions, err := storage.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Most recently updated first
	assert.Equal(t, "sess_new", sessions[0].ID)
	assert.Equal(t, "sess_old", sessions[1].ID)
}

func TestSessionDelete(t *testing.T) {
	storage := newTestSessionStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveSession(ctx, &models.ChatSession{ID: "sess_1"}))
	require.NoError(t, storage.DeleteSession(ctx, "sess_1"))

	_, err := storage.GetSession(ctx, "sess_1")
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)

	err = storage.DeleteSession(ctx, "sess_1")
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)

	count, err := storage.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

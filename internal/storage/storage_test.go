package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warmhome-backend/internal/model"
)

func newSession(id string) *model.Session {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.Session{
		ID:             id,
		StartTime:      now,
		LastActivityAt: now,
		IsActive:       true,
		Language:       model.LangEnglish,
		AttemptCounts:  map[string]int{},
		Context:        model.NewUserContext(),
		UpdatedAt:      now,
	}
}

func stores(t *testing.T) map[string]Storage {
	t.Helper()
	disk := NewDiskStorage(t.TempDir(), 10)
	mem := NewMemoryStorage()
	for name, s := range map[string]Storage{"memory": mem, "disk": disk} {
		require.NoError(t, s.Init(), name)
		t.Cleanup(func() { s.Close() })
	}
	return map[string]Storage{"memory": mem, "disk": disk}
}

func TestSessionLifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sess := newSession("s1")
			require.NoError(t, store.CreateSession(sess))

			got, err := store.GetSession("s1")
			require.NoError(t, err)
			assert.Equal(t, model.LangEnglish, got.Language)
			assert.True(t, got.IsActive)

			got.IsActive = false
			require.NoError(t, store.UpdateSession(got))

			got, err = store.GetSession("s1")
			require.NoError(t, err)
			assert.False(t, got.IsActive)

			require.NoError(t, store.DeleteSession("s1"))
			_, err = store.GetSession("s1")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestGetSessionNotFound(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetSession("missing")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestMessagesAppendInOrder(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.CreateSession(newSession("s1")))

			for i, content := range []string{"first", "second", "third"} {
				msg := &model.Message{
					ID:        string(rune('a' + i)),
					Content:   content,
					Type:      model.MessageUser,
					Timestamp: time.Now(),
					Language:  model.LangEnglish,
				}
				require.NoError(t, store.AddMessage("s1", msg))
			}

			messages, err := store.GetMessages("s1")
			require.NoError(t, err)
			require.Len(t, messages, 3)
			assert.Equal(t, "first", messages[0].Content)
			assert.Equal(t, "third", messages[2].Content)
		})
	}
}

func TestSetFeedback(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.CreateSession(newSession("s1")))
			require.NoError(t, store.AddMessage("s1", &model.Message{
				ID:      "m1",
				Content: "reply",
				Type:    model.MessageBot,
			}))

			require.NoError(t, store.SetFeedback("s1", "m1", false))

			messages, err := store.GetMessages("s1")
			require.NoError(t, err)
			require.NotNil(t, messages[0].IsHelpful)
			assert.False(t, *messages[0].IsHelpful)

			err = store.SetFeedback("s1", "missing", true)
			assert.ErrorIs(t, err, ErrMessageNotFound)
		})
	}
}

func TestGetSessionReturnsIndependentCopy(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.CreateSession(newSession("s1")))

			first, err := store.GetSession("s1")
			require.NoError(t, err)
			first.AttemptCounts["q1"] = 3
			first.Context.Role = model.RoleLandlord
			first.IsActive = false

			second, err := store.GetSession("s1")
			require.NoError(t, err)
			assert.Empty(t, second.AttemptCounts)
			assert.Equal(t, model.RoleUnknown, second.Context.Role)
			assert.True(t, second.IsActive)
		})
	}
}

func TestUpdateSessionKeepsActivityMonotonic(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.CreateSession(newSession("s1")))

			stale, err := store.GetSession("s1")
			require.NoError(t, err)

			fresh, err := store.GetSession("s1")
			require.NoError(t, err)
			fresh.Touch(fresh.LastActivityAt.Add(time.Minute))
			require.NoError(t, store.UpdateSession(fresh))

			// A write from the staler copy still lands, but never moves
			// activity backwards.
			stale.Language = model.LangChinese
			require.NoError(t, store.UpdateSession(stale))

			got, err := store.GetSession("s1")
			require.NoError(t, err)
			assert.Equal(t, model.LangChinese, got.Language)
			assert.Equal(t, fresh.LastActivityAt, got.LastActivityAt)
		})
	}
}

func TestUpdateSessionCannotReactivate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.CreateSession(newSession("s1")))

			stale, err := store.GetSession("s1")
			require.NoError(t, err)

			expired, err := store.GetSession("s1")
			require.NoError(t, err)
			expired.IsActive = false
			require.NoError(t, store.UpdateSession(expired))

			require.NoError(t, store.UpdateSession(stale))

			got, err := store.GetSession("s1")
			require.NoError(t, err)
			assert.False(t, got.IsActive)
		})
	}
}

func TestDiskStorageBackupSnapshotsFiles(t *testing.T) {
	dir := t.TempDir()

	store := NewDiskStorage(dir, 10)
	require.NoError(t, store.Init())
	defer store.Close()

	require.NoError(t, store.CreateSession(newSession("s1")))
	require.NoError(t, store.Backup())

	stamps, err := os.ReadDir(filepath.Join(dir, "backup"))
	require.NoError(t, err)
	require.Len(t, stamps, 1)

	copied, err := os.ReadDir(filepath.Join(dir, "backup", stamps[0].Name(), "sessions"))
	require.NoError(t, err)
	assert.Len(t, copied, 1)
}

func TestDiskStorageSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	store := NewDiskStorage(dir, 10)
	require.NoError(t, store.Init())

	sess := newSession("persisted")
	require.NoError(t, store.CreateSession(sess))
	require.NoError(t, store.AddMessage("persisted", &model.Message{
		ID:      "m1",
		Content: "hello",
		Type:    model.MessageUser,
	}))
	require.NoError(t, store.Close())

	reopened := NewDiskStorage(dir, 10)
	require.NoError(t, reopened.Init())
	defer reopened.Close()

	got, err := reopened.GetSession("persisted")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.ID)

	messages, err := reopened.GetMessages("persisted")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Content)
}

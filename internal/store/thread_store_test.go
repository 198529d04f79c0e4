package store

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelhq/kestrel/internal/domain"
	"github.com/kestrelhq/kestrel/internal/logging"
)

func openTestStore(t *testing.T) *ThreadStore {
	t.Helper()
	db, err := Open(":memory:", logging.New(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewThreadStore(db)
}

func TestThreadStoreLoadUnseenThread(t *testing.T) {
	s := openTestStore(t)

	msgs, err := s.Load(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestThreadStoreAppendAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "t1", domain.Message{
		Role:      domain.RoleUser,
		Content:   "show me sales",
		Timestamp: time.Now(),
	}))
	require.NoError(t, s.Append(ctx, "t1", domain.Message{
		Role:    domain.RoleAssistant,
		Content: "Checking.",
		ToolCalls: []domain.ToolCall{
			{ID: "call_1", Name: "query_database", Args: `{"sql": "SELECT 1"}`},
		},
		Timestamp: time.Now(),
	}))
	require.NoError(t, s.Append(ctx, "t1", domain.Message{
		Role:       domain.RoleTool,
		Content:    "| 1 |",
		ToolCallID: "call_1",
		Timestamp:  time.Now(),
	}))

	msgs, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "show me sales", msgs[0].Content)

	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[1].ToolCalls[0].ID)
	assert.Equal(t, "query_database", msgs[1].ToolCalls[0].Name)

	assert.Equal(t, domain.RoleTool, msgs[2].Role)
	assert.Equal(t, "call_1", msgs[2].ToolCallID)
}

func TestThreadStoreIsolation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "a", domain.Message{Role: domain.RoleUser, Content: "for a"}))
	require.NoError(t, s.Append(ctx, "b", domain.Message{Role: domain.RoleUser, Content: "for b"}))

	msgsA, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.Len(t, msgsA, 1)
	assert.Equal(t, "for a", msgsA[0].Content)

	msgsB, err := s.Load(ctx, "b")
	require.NoError(t, err)
	require.Len(t, msgsB, 1)
	assert.Equal(t, "for b", msgsB[0].Content)
}

func TestThreadStorePreservesOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	contents := []string{"one", "two", "three", "four"}
	for _, c := range contents {
		require.NoError(t, s.Append(ctx, "t1", domain.Message{Role: domain.RoleUser, Content: c}))
	}

	msgs, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, len(contents))
	for i, c := range contents {
		assert.Equal(t, c, msgs[i].Content)
	}
}

func TestThreadStoreList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "t1", domain.Message{Role: domain.RoleUser, Content: "x"}))
	require.NoError(t, s.Append(ctx, "t2", domain.Message{Role: domain.RoleUser, Content: "y"}))

	threads, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Empty(t, threads[0].Messages)
	assert.False(t, threads[0].UpdatedAt.IsZero())
}

func TestOpenCreatesSchemaIdempotently(t *testing.T) {
	path := t.TempDir() + "/kestrel.db"
	log := logging.New(io.Discard, "error")

	db, err := Open(path, log)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not re-run applied migrations.
	db, err = Open(path, log)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

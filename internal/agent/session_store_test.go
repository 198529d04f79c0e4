package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelhq/kestrel/internal/domain"
)

func TestMemoryStoreLoadUnseenThread(t *testing.T) {
	s := NewMemoryStore()

	msgs, err := s.Load(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMemoryStoreAppendPreservesOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, s.Append(ctx, "t1", domain.Message{
			Role:      domain.RoleUser,
			Content:   content,
			Timestamp: time.Now(),
		}))
	}

	msgs, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)
	assert.Equal(t, "three", msgs[2].Content)
}

func TestMemoryStoreThreadIsolation(t *testing.T) {
	s := NewMemoryStore()
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

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "t1", domain.Message{Role: domain.RoleUser, Content: "original"}))

	msgs, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	msgs[0].Content = "mutated"

	again, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}

func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "old", domain.Message{Role: domain.RoleUser, Content: "x"}))
	require.NoError(t, s.Append(ctx, "new", domain.Message{Role: domain.RoleUser, Content: "y"}))

	threads, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Empty(t, threads[0].Messages)
}

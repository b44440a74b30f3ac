package leaderboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/scoring"
	"github.com/lixenwraith/brakezone/status"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLocalStoreCapAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(3, "", discard)
	for i, score := range []int{50, 90, 70, 100, 60} {
		require.NoError(t, s.Insert(ctx, rec(string(rune('a'+i)), score, nil, int64(i))))
	}
	assert.Equal(t, 3, s.Len())

	top, err := s.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "c"}, ids(top))

	top, err = s.Top(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, top, 3, "zero limit uses the default, bounded by what is stored")
}

func TestLocalStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "leaderboard.json")

	s := NewLocalStore(50, path, discard)
	require.NoError(t, s.Insert(ctx, rec("a", 80, f64(0.6), 1)))
	require.NoError(t, s.Insert(ctx, rec("b", 95, f64(0.5), 2)))

	reloaded := NewLocalStore(50, path, discard)
	top, err := reloaded.Top(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(top))
}

func TestLocalStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := NewLocalStore(50, path, discard)
	assert.Zero(t, s.Len())
}

func newRedisStore(t *testing.T, capacity int) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "test:", capacity, discard), mr
}

func TestRedisStoreOrdering(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t, 50)

	require.NoError(t, s.Insert(ctx, rec("no-rt", 90, nil, 1)))
	require.NoError(t, s.Insert(ctx, rec("slow", 90, f64(0.9), 2)))
	require.NoError(t, s.Insert(ctx, rec("fast-late", 90, f64(0.4), 5)))
	require.NoError(t, s.Insert(ctx, rec("fast-early", 90, f64(0.4), 3)))
	require.NoError(t, s.Insert(ctx, rec("top", 100, f64(1.2), 9)))

	top, err := s.Top(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "fast-early", "fast-late", "slow", "no-rt"}, ids(top))

	top, err = s.Top(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "fast-early"}, ids(top))
}

func TestRedisStoreTrimsToCap(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, 2)
	for i, score := range []int{10, 30, 20} {
		require.NoError(t, s.Insert(ctx, rec(string(rune('a'+i)), score, nil, int64(i))))
	}

	top, err := s.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(top))

	fields, err := mr.HKeys("test:records")
	require.NoError(t, err)
	assert.Len(t, fields, 2)
}

func TestRedisStoreEmpty(t *testing.T) {
	s, _ := newRedisStore(t, 50)
	top, err := s.Top(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}

type failingStore struct{}

func (failingStore) Top(context.Context, int) ([]Record, error) {
	return nil, errors.New("remote down")
}
func (failingStore) Insert(context.Context, Record) error { return errors.New("remote down") }

func TestBoardFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	reg := status.NewRegistry()
	b := NewBoard(NewLocalStore(50, "", discard), failingStore{}, BoardOptions{Logger: discard, Metrics: reg})

	top, err := b.Submit(ctx, rec("a", 80, f64(0.7), 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(top))
	assert.Equal(t, int64(2), reg.Ints.Get("leaderboard.remote_errors").Load())
	assert.Equal(t, int64(1), reg.Ints.Get("leaderboard.saved").Load())
}

func TestBoardRemoteFirst(t *testing.T) {
	ctx := context.Background()
	remote, _ := newRedisStore(t, 50)
	require.NoError(t, remote.Insert(ctx, rec("remote-only", 100, f64(0.3), 1)))

	local := NewLocalStore(50, "", discard)
	b := NewBoard(local, remote, BoardOptions{Logger: discard})

	top, err := b.Submit(ctx, rec("mine", 70, f64(0.8), 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"remote-only", "mine"}, ids(top))
	assert.Equal(t, 1, local.Len(), "insert is mirrored locally")
}

func TestBoardRejectsInvalid(t *testing.T) {
	b := NewBoard(NewLocalStore(50, "", discard), nil, BoardOptions{Logger: discard})
	_, err := b.Submit(context.Background(), rec("x", 120, nil, 1))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestBoardSaveAsync(t *testing.T) {
	b := NewBoard(NewLocalStore(50, "", discard), nil, BoardOptions{Logger: discard})
	done := make(chan []Record, 1)

	b.SaveAsync(engine.RunOutcome{
		RunID:   "run-9",
		Player:  engine.Player{Name: "Ara"},
		Result:  scoring.Result{Score: 100, Grade: scoring.GradeExcellent},
		EndedAt: time.Now(),
	}, func(top []Record) { done <- top })

	select {
	case top := <-done:
		require.Len(t, top, 1)
		assert.Equal(t, "run-9", top[0].ID)
	case <-time.After(time.Second):
		t.Fatal("async save did not complete")
	}

	// Disqualified runs never reach the store
	b.SaveAsync(engine.RunOutcome{Disqualified: true}, func([]Record) { t.Error("unexpected save") })
}

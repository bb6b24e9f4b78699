package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastudio/pkg/contracts/domain"
)

func newTestAnalysis(id string, at time.Time) *Analysis {
	return &Analysis{
		ID:        id,
		Filename:  id + ".csv",
		Stem:      id,
		Format:    domain.FormatCSV,
		CreatedAt: at,
	}
}

func TestSessionStore_PutGet(t *testing.T) {
	store := NewSessionStore(4, time.Hour)

	a := newTestAnalysis("a", time.Now())
	store.Put(a)

	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 1, store.Len())

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestSessionStore_CapacityEvictsOldest(t *testing.T) {
	store := NewSessionStore(2, time.Hour)

	var evicted []string
	store.OnEvict(func(id, reason string) {
		evicted = append(evicted, id+":"+reason)
	})

	base := time.Now()
	store.Put(newTestAnalysis("a", base))
	store.Put(newTestAnalysis("b", base.Add(time.Second)))
	store.Put(newTestAnalysis("c", base.Add(2*time.Second)))

	_, ok := store.Get("a")
	assert.False(t, ok, "oldest session should be evicted")
	_, ok = store.Get("b")
	assert.True(t, ok)
	_, ok = store.Get("c")
	assert.True(t, ok)

	assert.Equal(t, []string{"a:capacity"}, evicted)
	assert.Equal(t, 2, store.Len())
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	store := NewSessionStore(8, time.Hour)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	var evicted []string
	store.OnEvict(func(id, reason string) {
		evicted = append(evicted, id+":"+reason)
	})

	store.Put(newTestAnalysis("a", current))
	store.Put(newTestAnalysis("b", current.Add(30*time.Minute)))

	// Jump past a's TTL but not b's.
	current = current.Add(time.Hour + time.Minute)

	_, ok := store.Get("a")
	assert.False(t, ok, "expired session should be gone")
	_, ok = store.Get("b")
	assert.True(t, ok)

	assert.Equal(t, []string{"a:expired"}, evicted)
}

func TestSessionStore_ZeroTTLNeverExpires(t *testing.T) {
	store := NewSessionStore(8, 0)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.Put(newTestAnalysis("a", current))
	current = current.Add(1000 * time.Hour)

	_, ok := store.Get("a")
	assert.True(t, ok)
}

func TestSessionStore_PutSameIDUpdates(t *testing.T) {
	store := NewSessionStore(2, time.Hour)

	first := newTestAnalysis("a", time.Now())
	second := newTestAnalysis("a", time.Now())
	second.Filename = "updated.csv"

	store.Put(first)
	store.Put(second)

	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "updated.csv", got.Filename)
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	store := NewSessionStore(64, time.Hour)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				id := fmt.Sprintf("s-%d-%d", n, j)
				store.Put(newTestAnalysis(id, time.Now()))
				store.Get(id)
				store.Len()
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, 64, store.Len())
}

func TestAnalysis_Snapshot(t *testing.T) {
	raw := domain.NewTable(domain.Column{Name: "x", Kind: domain.KindNumeric, Values: []domain.Value{
		domain.Number(1), domain.Number(2), domain.Number(2),
	}})
	cleaned := domain.NewTable(domain.Column{Name: "x", Kind: domain.KindNumeric, Values: []domain.Value{
		domain.Number(1), domain.Number(2),
	}})

	a := &Analysis{
		Raw:     raw,
		Cleaned: cleaned,
		CleaningReport: domain.CleaningReport{
			DroppedDuplicates: 1,
			ImputedCells:      3,
		},
	}

	snap := a.Snapshot()
	assert.Equal(t, 3, snap.RawRows)
	assert.Equal(t, 2, snap.CleanedRows)
	assert.Equal(t, 1, snap.Columns)
	assert.Equal(t, 1, snap.DroppedDuplicates)
	assert.Equal(t, 3, snap.ImputedCells)
}

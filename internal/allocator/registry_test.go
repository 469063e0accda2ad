package allocator

import (
	"sync"
	"testing"

	"github.com/specialistvlad/wfplan/internal/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, ids ...string) *Registry {
	t.Helper()
	entries := make([]resources.Entry, len(ids))
	for i, id := range ids {
		entries[i] = resources.Entry{ID: id, Processor: "i7"}
	}
	reg, err := NewRegistry(entries)
	require.NoError(t, err)
	return reg
}

func TestRegistry_AllocateInListOrder(t *testing.T) {
	reg := newTestRegistry(t, "slot1@alpha", "slot2@alpha", "master")

	first, ok := reg.Allocate("job-a")
	require.True(t, ok)
	second, ok := reg.Allocate("job-b")
	require.True(t, ok)

	assert.Equal(t, "slot1@alpha", first)
	assert.Equal(t, "slot2@alpha", second)
	assert.Equal(t, Status{Total: 3, Used: 2, Available: 1}, reg.Status())
	assert.Equal(t, uint64(2), reg.Generation())
}

func TestRegistry_Exhausted(t *testing.T) {
	reg := newTestRegistry(t, "only")
	_, ok := reg.Allocate("a")
	require.True(t, ok)

	_, ok = reg.Allocate("b")

	assert.False(t, ok)
	assert.Equal(t, uint64(1), reg.Generation(), "failed allocation must not bump the generation")
}

func TestRegistry_Release(t *testing.T) {
	reg := newTestRegistry(t, "r1", "r2")
	_, _ = reg.Allocate("a")
	_, _ = reg.Allocate("b")

	id, ok := reg.Release("a")
	require.True(t, ok)
	assert.Equal(t, "r1", id)

	_, ok = reg.Release("a")
	assert.False(t, ok)

	again, ok := reg.Allocate("c")
	require.True(t, ok)
	assert.Equal(t, "r1", again, "freed resource is reused first")
}

func TestRegistry_EmptyJobName(t *testing.T) {
	reg := newTestRegistry(t, "r1", "r2")

	id, ok := reg.Release("")
	assert.False(t, ok)
	assert.Empty(t, id)

	id, ok = reg.Allocate("")
	assert.False(t, ok)
	assert.Empty(t, id)

	assert.Equal(t, Status{Total: 2, Used: 0, Available: 2}, reg.Status())
	assert.Equal(t, uint64(0), reg.Generation())
}

func TestNewRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.ErrorIs(t, err, resources.ErrResourceListEmpty)

	_, err = NewRegistry([]resources.Entry{{ID: "r1"}, {ID: "r2", Job: "leftover"}})
	assert.ErrorIs(t, err, ErrStaleAllocations)
	assert.ErrorContains(t, err, "r2=leftover")
}

func TestRegistry_SnapshotAndPersisted(t *testing.T) {
	reg := newTestRegistry(t, "r1", "r2")
	_, _ = reg.Allocate("a")

	snap := reg.Snapshot()
	_, _ = reg.Allocate("b")

	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, "a", snap.Entries[0].Job)
	assert.Empty(t, snap.Entries[1].Job, "snapshot is a copy")

	reg.MarkPersisted(2)
	reg.MarkPersisted(1)
	assert.Equal(t, uint64(2), reg.LastPersisted())
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := newTestRegistry(t, "r1", "r2", "r3", "r4")

	var wg sync.WaitGroup
	got := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if id, ok := reg.Allocate(string(rune('a' + i))); ok {
				got <- id
			}
		}(i)
	}
	wg.Wait()
	close(got)

	seen := make(map[string]bool)
	for id := range got {
		assert.False(t, seen[id], "resource %s handed out twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, Status{Total: 4, Used: 4, Available: 0}, reg.Status())
}

package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorHandsOutLowestFreeId(t *testing.T) {
	a := newAllocator(1, 3)

	id1, ok := a.next()
	require.True(t, ok)
	assert.Equal(t, uint16(1), id1)

	id2, ok := a.next()
	require.True(t, ok)
	assert.Equal(t, uint16(2), id2)

	a.release(id1)

	id3, ok := a.next()
	require.True(t, ok)
	assert.Equal(t, uint16(1), id3)
}

func TestAllocatorExhaustion(t *testing.T) {
	a := newAllocator(1, 2)
	_, ok := a.next()
	require.True(t, ok)
	_, ok = a.next()
	require.True(t, ok)

	_, ok = a.next()
	assert.False(t, ok)
}

func TestAllocatorReserveSkipsId(t *testing.T) {
	a := newAllocator(1, 3)
	a.reserve(1)

	id, ok := a.next()
	require.True(t, ok)
	assert.Equal(t, uint16(2), id)
}

func TestChannelRegistryAddGetRemove(t *testing.T) {
	r := newChannelRegistry(10)
	id, ok := r.next()
	require.True(t, ok)

	ch := &Channel{id: id}
	r.add(id, ch)
	assert.Same(t, ch, r.get(id))

	r.remove(id)
	assert.Nil(t, r.get(id))

	id2, ok := r.next()
	require.True(t, ok)
	assert.Equal(t, id, id2, "released id should be reusable")
}

func TestChannelRegistryRemoveAllDrainsAndReleases(t *testing.T) {
	r := newChannelRegistry(10)
	ids := make([]uint16, 0, 3)
	for i := 0; i < 3; i++ {
		id, ok := r.next()
		require.True(t, ok)
		ids = append(ids, id)
		r.add(id, &Channel{id: id})
	}

	removed := r.removeAll()
	assert.Len(t, removed, 3)
	for _, id := range ids {
		assert.Nil(t, r.get(id))
	}

	id, ok := r.next()
	require.True(t, ok)
	assert.Equal(t, uint16(1), id)
}

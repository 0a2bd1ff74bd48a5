package vkcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolGenerationInvariants(t *testing.T) {
	p := NewPool[int]()

	h1 := p.Create(10)
	assert.Equal(t, uint32(1), h1.Generation)
	assert.NotNil(t, p.Get(h1))
	assert.Equal(t, 10, *p.Get(h1))

	p.Destroy(h1)
	assert.Nil(t, p.Get(h1))

	h2 := p.Create(20)
	assert.Equal(t, h1.Index, h2.Index, "freed slot should be reused")
	assert.Equal(t, uint32(2), h2.Generation, "reuse must bump generation")
	assert.Nil(t, p.Get(h1), "stale handle must never alias the new entry")
	assert.Equal(t, 20, *p.Get(h2))
}

func TestPoolNullHandle(t *testing.T) {
	p := NewPool[int]()
	assert.Nil(t, p.Get(NullHandle))
	p.Destroy(NullHandle) // must not panic
}

func TestPoolDoubleDestroyIsNoop(t *testing.T) {
	p := NewPool[int]()
	h := p.Create(1)
	p.Destroy(h)
	p.Destroy(h)
	assert.Nil(t, p.Get(h))
}

func TestPoolEachVisitsLiveOnly(t *testing.T) {
	p := NewPool[int]()
	h1 := p.Create(1)
	_ = p.Create(2)
	p.Destroy(h1)
	h3 := p.Create(3)

	seen := map[uint32]int{}
	p.Each(func(h Handle, v *int) {
		seen[h.Index] = *v
	})
	assert.Len(t, seen, 2)
	assert.Equal(t, 3, seen[h3.Index])
}

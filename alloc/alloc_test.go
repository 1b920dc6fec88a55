package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopCnt(t *testing.T) {
	assert.Equal(t, uint64(0), popCnt(0))
	assert.Equal(t, uint64(1), popCnt(1))
	assert.Equal(t, uint64(1), popCnt(2))
	assert.Equal(t, uint64(2), popCnt(3))
	assert.Equal(t, uint64(8), popCnt(255))
}

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	max := uint64(32)
	a := MkAlloc(max)

	assert.Equal(max, a.NumFree(), "everything should be initially free")

	n, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(0), n, "first fit starts at 0")

	assert.NoError(a.MarkUsed(n + 1))
	n2, ok := a.AllocNum()
	assert.True(ok)
	assert.NotEqual(n+1, n2, "should not allocate something marked used")

	assert.Equal(max-3, a.NumFree(), "should have used 3 items")

	assert.NoError(a.FreeNum(n))
	assert.NoError(a.FreeNum(n2))
	assert.Equal(max-1, a.NumFree(), "should have freed")
}

func TestAllocFirstFit(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(16)
	for i := uint64(0); i < 5; i++ {
		n, ok := a.AllocNum()
		assert.True(ok)
		assert.Equal(i, n)
	}
	assert.NoError(a.FreeNum(2))
	n, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(2), n, "freed number is reused first")
}

func TestAllocExhaustion(t *testing.T) {
	assert := assert.New(t)
	// 10 is not a multiple of 8, so the bitmap has slack bits that must
	// not be handed out
	a := MkAlloc(10)
	for i := uint64(0); i < 10; i++ {
		n, ok := a.AllocNum()
		assert.True(ok)
		assert.Equal(i, n)
	}
	_, ok := a.AllocNum()
	assert.False(ok, "allocator is empty")
	assert.Equal(uint64(0), a.NumFree())
}

func TestAllocOutOfRange(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(8)
	assert.ErrorIs(a.FreeNum(8), ErrOutOfRange)
	assert.ErrorIs(a.MarkUsed(100), ErrOutOfRange)
}

func TestFreeIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(8)
	n, ok := a.AllocNum()
	assert.True(ok)
	assert.NoError(a.FreeNum(n))
	assert.NoError(a.FreeNum(n), "freeing a free number is a no-op")
	assert.Equal(uint64(8), a.NumFree())
}

func TestIsTaken(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(8)
	n, _ := a.AllocNum()
	assert.True(a.IsTaken(n))
	a.FreeNum(n)
	assert.False(a.IsTaken(n))
}

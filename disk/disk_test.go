package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDisk(t *testing.T, d Disk) {
	assert := assert.New(t)
	assert.Equal(uint64(4), d.Size())

	blk := make(Block, BlockSize)
	blk[0] = 0xaa
	blk[BlockSize-1] = 0x55
	assert.NoError(d.Write(3, blk))

	got, err := d.Read(3)
	assert.NoError(err)
	assert.Equal(Block(blk), got)

	got2 := make(Block, BlockSize)
	assert.NoError(d.ReadTo(3, got2))
	assert.Equal(Block(blk), got2)

	_, err = d.Read(4)
	assert.Error(err, "out-of-bounds read")
	assert.Error(d.Write(4, blk), "out-of-bounds write")

	assert.NoError(d.Close())
}

func TestMemDisk(t *testing.T) {
	testDisk(t, NewMemDisk(4))
}

func TestFileDisk(t *testing.T) {
	d, err := NewFileDisk(filepath.Join(t.TempDir(), "arena"), 4)
	assert.NoError(t, err)
	testDisk(t, d)
}

func TestMemDiskReadsAreCopies(t *testing.T) {
	assert := assert.New(t)
	d := NewMemDisk(1)
	blk, err := d.Read(0)
	assert.NoError(err)
	blk[0] = 0xff
	again, err := d.Read(0)
	assert.NoError(err)
	assert.Equal(byte(0), again[0], "mutating a read buffer must not change the disk")
}

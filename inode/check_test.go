package inode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
)

func TestCheckClean(t *testing.T) {
	assert := assert.New(t)
	_, tbl := mkTestTable()

	dir, err := tbl.Create(common.TDirectory)
	assert.NoError(err)
	for _, name := range []string{"a", "b", "c"} {
		inum, err := tbl.CreateIn(dir, common.TFile, name)
		assert.NoError(err)
		tbl.Lock(inum)
		for i := 0; i < 12; i++ {
			_, err := tbl.Extend(inum)
			assert.NoError(err)
		}
		tbl.Unlock(inum)
	}

	assert.NoError(tbl.Check())
}

func TestCheckDoubleReference(t *testing.T) {
	assert := assert.New(t)
	_, tbl := mkTestTable()

	a, err := tbl.Create(common.TFile)
	assert.NoError(err)
	b, err := tbl.Create(common.TFile)
	assert.NoError(err)

	tbl.Lock(a)
	blk, err := tbl.Extend(a)
	assert.NoError(err)
	tbl.Unlock(a)

	// corrupt b to claim a's block
	tbl.slots[b].Direct[0] = blk
	tbl.slots[b].Blocks = 1

	assert.Error(tbl.Check(), "shared block must be detected")
}

func TestCheckLeakedBlock(t *testing.T) {
	assert := assert.New(t)
	bs, tbl := mkTestTable()

	// a taken block no i-node references
	_, err := bs.Alloc()
	assert.NoError(err)

	assert.Error(tbl.Check())
}

func TestCheckBadSize(t *testing.T) {
	assert := assert.New(t)
	_, tbl := mkTestTable()

	inum, err := tbl.Create(common.TFile)
	assert.NoError(err)
	tbl.slots[inum].Size = 1 // one byte, zero blocks

	assert.Error(tbl.Check())
}

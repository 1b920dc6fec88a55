package inode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/block"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
)

func mkTestTable() (*block.Store, *Table) {
	bs := block.MkStore()
	return bs, MkTable(bs)
}

func TestCreateFile(t *testing.T) {
	assert := assert.New(t)
	_, tbl := mkTestTable()

	inum, err := tbl.Create(common.TFile)
	assert.NoError(err)
	assert.Equal(common.Inum(0), inum, "first fit starts at slot 0")
	assert.Equal(common.InodeTableSize-1, tbl.NumFree())

	ip, err := tbl.Get(inum)
	assert.NoError(err)
	assert.Equal(common.TFile, ip.Type)
	assert.Equal(uint64(0), ip.Size)
	assert.Equal(uint64(0), ip.Blocks, "a file starts with no data blocks")
}

func TestCreateDirectory(t *testing.T) {
	assert := assert.New(t)
	bs, tbl := mkTestTable()

	inum, err := tbl.Create(common.TDirectory)
	assert.NoError(err)

	ip, err := tbl.Get(inum)
	assert.NoError(err)
	assert.Equal(common.TDirectory, ip.Type)
	assert.Equal(uint64(1), ip.Blocks, "a directory owns its content block")
	assert.Equal(common.DataBlocks-1, bs.NumFree())

	_, err = tbl.Find(inum, "missing")
	assert.ErrorIs(err, ErrNotFound)
}

func TestExtendAcrossIndirectBoundary(t *testing.T) {
	assert := assert.New(t)
	bs, tbl := mkTestTable()

	inum, err := tbl.Create(common.TFile)
	assert.NoError(err)

	tbl.Lock(inum)
	var assigned []common.Bnum
	for i := uint64(0); i < common.InodeDirectRefs; i++ {
		b, err := tbl.Extend(inum)
		assert.NoError(err)
		assigned = append(assigned, b)
	}
	assert.Equal(common.DataBlocks-common.InodeDirectRefs, bs.NumFree())

	// the next extension assigns one content block plus the indirect
	// reference block, exactly once
	b, err := tbl.Extend(inum)
	assert.NoError(err)
	assigned = append(assigned, b)
	assert.Equal(common.DataBlocks-common.InodeDirectRefs-2, bs.NumFree())

	b, err = tbl.Extend(inum)
	assert.NoError(err)
	assigned = append(assigned, b)
	assert.Equal(common.DataBlocks-common.InodeDirectRefs-3, bs.NumFree())

	for i, want := range assigned {
		got, err := tbl.BlockAt(inum, uint64(i))
		assert.NoError(err)
		assert.Equal(want, got, "logical index %d", i)
	}
	tbl.Unlock(inum)
}

func TestExtendToCapacity(t *testing.T) {
	assert := assert.New(t)
	_, tbl := mkTestTable()

	inum, err := tbl.Create(common.TFile)
	assert.NoError(err)

	tbl.Lock(inum)
	max := common.InodeDirectRefs + common.MaxIndirectRefs
	for i := uint64(0); i < max; i++ {
		_, err := tbl.Extend(inum)
		assert.NoError(err)
	}
	_, err = tbl.Extend(inum)
	assert.ErrorIs(err, ErrFileFull)
	tbl.Unlock(inum)

	assert.NoError(tbl.Check())
}

func TestClear(t *testing.T) {
	assert := assert.New(t)
	bs, tbl := mkTestTable()

	inum, err := tbl.Create(common.TFile)
	assert.NoError(err)

	tbl.Lock(inum)
	for i := uint64(0); i < common.InodeDirectRefs+3; i++ {
		_, err := tbl.Extend(inum)
		assert.NoError(err)
	}
	ip, err := tbl.Get(inum)
	assert.NoError(err)
	ip.Size = 5
	tbl.Unlock(inum)

	assert.NoError(tbl.Clear(inum))
	assert.Equal(uint64(0), ip.Size)
	assert.Equal(uint64(0), ip.Blocks)
	assert.Equal(common.DataBlocks, bs.NumFree(), "clear frees directs, indirects, and the indirect block")
	assert.Equal(common.InodeTableSize-1, tbl.NumFree(), "clear keeps the slot")
}

func TestDelete(t *testing.T) {
	assert := assert.New(t)
	bs, tbl := mkTestTable()

	inum, err := tbl.Create(common.TFile)
	assert.NoError(err)
	tbl.Lock(inum)
	_, err = tbl.Extend(inum)
	assert.NoError(err)
	tbl.Unlock(inum)

	assert.NoError(tbl.Delete(inum))
	assert.Equal(common.DataBlocks, bs.NumFree())
	assert.Equal(common.InodeTableSize, tbl.NumFree())

	assert.ErrorIs(tbl.Delete(inum), ErrFreeInum)
	assert.ErrorIs(tbl.Delete(common.Inum(common.InodeTableSize)), ErrBadInum)

	// the slot is immediately reusable
	again, err := tbl.Create(common.TFile)
	assert.NoError(err)
	assert.Equal(inum, again)
}

func TestBlockAtErrors(t *testing.T) {
	assert := assert.New(t)
	_, tbl := mkTestTable()

	inum, err := tbl.Create(common.TFile)
	assert.NoError(err)

	tbl.RLock(inum)
	_, err = tbl.BlockAt(inum, 0)
	assert.ErrorIs(err, ErrBadIndex)
	tbl.RUnlock(inum)

	_, err = tbl.BlockAt(common.Inum(common.InodeTableSize), 0)
	assert.ErrorIs(err, ErrBadInum)
	_, err = tbl.BlockAt(inum+1, 0)
	assert.ErrorIs(err, ErrFreeInum)

	_, err = tbl.Extend(common.Inum(common.InodeTableSize))
	assert.ErrorIs(err, ErrBadInum)
}

func TestTableExhaustion(t *testing.T) {
	assert := assert.New(t)
	_, tbl := mkTestTable()

	for i := uint64(0); i < common.InodeTableSize; i++ {
		_, err := tbl.Create(common.TFile)
		assert.NoError(err)
	}
	_, err := tbl.Create(common.TFile)
	assert.ErrorIs(err, ErrNoInodes)
}

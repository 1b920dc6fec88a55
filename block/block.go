// Package block implements the data-block store: a fixed arena of
// BlockSize-byte blocks plus a free/taken bitmap.
package block

import (
	"errors"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/alloc"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/disk"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/util"
)

var (
	ErrNoBlocks = errors.New("block: no free blocks")
	ErrBadBnum  = errors.New("block: block number out of range")
)

type Store struct {
	d      disk.Disk
	bitmap *alloc.Alloc
}

// MkStore creates a block store over an in-memory arena.
func MkStore() *Store {
	util.DPrintf(1, "MkStore: %d blocks\n", common.DataBlocks)
	return &Store{
		d:      disk.NewMemDisk(common.DataBlocks),
		bitmap: alloc.MkAlloc(common.DataBlocks),
	}
}

// MkStoreAt creates a block store whose arena is laid over a host file.
// The file is backing storage only; its contents are not interpreted.
func MkStoreAt(path string) (*Store, error) {
	util.DPrintf(1, "MkStoreAt: %s\n", path)
	d, err := disk.NewFileDisk(path, common.DataBlocks)
	if err != nil {
		return nil, err
	}
	return &Store{
		d:      d,
		bitmap: alloc.MkAlloc(common.DataBlocks),
	}, nil
}

// Alloc claims the first free block. Contents are not zeroed; callers
// that rely on zero-initialization must write the block themselves.
func (s *Store) Alloc() (common.Bnum, error) {
	b, ok := s.bitmap.AllocNum()
	if !ok {
		return 0, ErrNoBlocks
	}
	return b, nil
}

// Free returns block b to the free pool.
func (s *Store) Free(b common.Bnum) error {
	if b >= common.DataBlocks {
		return ErrBadBnum
	}
	return s.bitmap.FreeNum(b)
}

// Read returns a copy of block b's contents.
func (s *Store) Read(b common.Bnum) (disk.Block, error) {
	if b >= common.DataBlocks {
		return nil, ErrBadBnum
	}
	util.StorageDelay() // block access
	return s.d.Read(b)
}

// Write replaces block b's contents.
func (s *Store) Write(b common.Bnum, blk disk.Block) error {
	if b >= common.DataBlocks {
		return ErrBadBnum
	}
	util.StorageDelay() // block access
	return s.d.Write(b, blk)
}

// IsTaken reports whether block b is currently allocated.
func (s *Store) IsTaken(b common.Bnum) bool {
	return s.bitmap.IsTaken(b)
}

func (s *Store) NumFree() uint64 {
	return s.bitmap.NumFree()
}

func (s *Store) Close() error {
	return s.d.Close()
}

package inode

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
)

// Check verifies the cross-table ownership invariants: every taken
// i-node's size and block count are in bounds, the block references of
// all taken i-nodes (directs, indirects, and the indirect blocks
// themselves) are pairwise disjoint, and together they are exactly the
// taken set of the block allocator.
func (tbl *Table) Check() error {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()

	owned := roaring64.New()
	for i := uint64(0); i < common.InodeTableSize; i++ {
		if !tbl.taken.IsTaken(i) {
			continue
		}
		tbl.locks.RAcquire(i)
		err := tbl.checkInode(common.Inum(i), owned)
		tbl.locks.RRelease(i)
		if err != nil {
			return err
		}
	}

	takenBlocks := common.DataBlocks - tbl.bs.NumFree()
	if owned.GetCardinality() != takenBlocks {
		return fmt.Errorf("inode: %d blocks referenced but %d allocated",
			owned.GetCardinality(), takenBlocks)
	}
	return nil
}

// checkInode requires tbl.mu and the i-node's read lock.
func (tbl *Table) checkInode(inum common.Inum, owned *roaring64.Bitmap) error {
	ip := &tbl.slots[inum]
	if ip.Blocks > common.InodeDirectRefs+common.MaxIndirectRefs {
		return fmt.Errorf("inode: i-node %d has %d blocks", inum, ip.Blocks)
	}
	if ip.Size > ip.Blocks*common.BlockSize {
		return fmt.Errorf("inode: i-node %d size %d exceeds %d assigned bytes",
			inum, ip.Size, ip.Blocks*common.BlockSize)
	}

	claim := func(b common.Bnum) error {
		if !tbl.bs.IsTaken(b) {
			return fmt.Errorf("inode: i-node %d references free block %d", inum, b)
		}
		if !owned.CheckedAdd(uint64(b)) {
			return fmt.Errorf("inode: block %d referenced twice", b)
		}
		return nil
	}
	for idx := uint64(0); idx < ip.Blocks; idx++ {
		b, err := tbl.BlockAt(inum, idx)
		if err != nil {
			return err
		}
		if err := claim(b); err != nil {
			return err
		}
	}
	if ip.Blocks > common.InodeDirectRefs {
		if err := claim(ip.Indirect); err != nil {
			return err
		}
	}
	return nil
}

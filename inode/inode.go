// Package inode implements the i-node table: a fixed array of i-node
// slots with a free/taken bitmap, per-slot reader/writer locks, and the
// direct/indirect block indexing scheme.
package inode

import (
	"errors"
	"sync"

	"github.com/tchajed/marshal"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/alloc"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/block"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/disk"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/lockmap"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/util"
)

var (
	ErrBadInum  = errors.New("inode: inumber out of range")
	ErrFreeInum = errors.New("inode: i-node is not allocated")
	ErrNoInodes = errors.New("inode: no free i-node slots")
	ErrFileFull = errors.New("inode: file at maximum block count")
	ErrBadIndex = errors.New("inode: block index out of range")
)

// An Inode's first Blocks references are valid: Direct in order, then
// the entries of the Indirect block. Indirect is meaningful only while
// Blocks > InodeDirectRefs.
type Inode struct {
	Type     common.InodeType
	Size     uint64
	Blocks   uint64 // assigned data blocks
	Direct   [common.InodeDirectRefs]common.Bnum
	Indirect common.Bnum
}

type Table struct {
	mu    *sync.Mutex // serializes slot allocation and directory creates
	slots []Inode
	taken *alloc.Alloc
	locks *lockmap.LockTbl
	bs    *block.Store
}

func MkTable(bs *block.Store) *Table {
	util.DPrintf(1, "MkTable: %d slots\n", common.InodeTableSize)
	return &Table{
		mu:    new(sync.Mutex),
		slots: make([]Inode, common.InodeTableSize),
		taken: alloc.MkAlloc(common.InodeTableSize),
		locks: lockmap.MkLockTbl(common.InodeTableSize),
		bs:    bs,
	}
}

func validInum(inum common.Inum) bool {
	return uint64(inum) < common.InodeTableSize
}

// Lock acquires i-node inum's lock for writing.
func (tbl *Table) Lock(inum common.Inum) { tbl.locks.Acquire(uint64(inum)) }

func (tbl *Table) Unlock(inum common.Inum) { tbl.locks.Release(uint64(inum)) }

// RLock acquires i-node inum's lock for reading.
func (tbl *Table) RLock(inum common.Inum) { tbl.locks.RAcquire(uint64(inum)) }

func (tbl *Table) RUnlock(inum common.Inum) { tbl.locks.RRelease(uint64(inum)) }

// Get returns a pointer to the i-node in slot inum. Fields may only be
// read while holding the i-node's lock, and written while holding it
// for writing.
func (tbl *Table) Get(inum common.Inum) (*Inode, error) {
	if !validInum(inum) {
		return nil, ErrBadInum
	}
	util.StorageDelay() // i-node access
	return &tbl.slots[inum], nil
}

// NumFree reports how many i-node slots are unallocated.
func (tbl *Table) NumFree() uint64 {
	return tbl.taken.NumFree()
}

// Create allocates an i-node of the given type. A directory gets its
// single content block assigned and filled with empty entries.
func (tbl *Table) Create(t common.InodeType) (common.Inum, error) {
	tbl.mu.Lock()
	inum, err := tbl.createUnsafe(t)
	tbl.mu.Unlock()
	return inum, err
}

// createUnsafe requires tbl.mu.
func (tbl *Table) createUnsafe(t common.InodeType) (common.Inum, error) {
	num, ok := tbl.taken.AllocNum()
	if !ok {
		return 0, ErrNoInodes
	}
	inum := common.Inum(num)
	util.StorageDelay() // i-node access
	ip := &tbl.slots[inum]
	ip.Type = t
	ip.Size = 0
	ip.Blocks = 0
	if t == common.TDirectory {
		// blocks are not zeroed on allocation, so the directory's
		// entries must be emptied explicitly
		b, err := tbl.extendUnsafe(inum)
		if err != nil {
			tbl.taken.FreeNum(num)
			return 0, err
		}
		if err := tbl.bs.Write(b, emptyDirBlock()); err != nil {
			tbl.clearUnsafe(inum)
			tbl.taken.FreeNum(num)
			return 0, err
		}
	}
	util.DPrintf(3, "createUnsafe: inum %d type %d\n", inum, t)
	return inum, nil
}

// Delete clears i-node inum and returns its slot to the free pool. The
// slot may be reused immediately.
func (tbl *Table) Delete(inum common.Inum) error {
	if !validInum(inum) {
		return ErrBadInum
	}
	util.StorageDelay() // i-node access
	util.StorageDelay() // slot bitmap access
	tbl.mu.Lock()
	tbl.locks.Acquire(uint64(inum))
	release := func() {
		tbl.locks.Release(uint64(inum))
		tbl.mu.Unlock()
	}
	if !tbl.taken.IsTaken(uint64(inum)) {
		release()
		return ErrFreeInum
	}
	if err := tbl.clearUnsafe(inum); err != nil {
		release()
		return err
	}
	tbl.taken.FreeNum(uint64(inum))
	release()
	return nil
}

// Clear frees every data block of i-node inum but keeps the slot
// allocated, leaving an empty file. A handle whose cursor is now past
// the end fails its next I/O.
func (tbl *Table) Clear(inum common.Inum) error {
	if !validInum(inum) {
		return ErrBadInum
	}
	tbl.locks.Acquire(uint64(inum))
	if !tbl.taken.IsTaken(uint64(inum)) {
		tbl.locks.Release(uint64(inum))
		return ErrFreeInum
	}
	err := tbl.clearUnsafe(inum)
	tbl.locks.Release(uint64(inum))
	return err
}

// clearUnsafe requires the i-node's write lock. Directs are freed
// first, then each indirect reference, then the indirect block itself.
func (tbl *Table) clearUnsafe(inum common.Inum) error {
	ip := &tbl.slots[inum]
	i := uint64(0)
	for ; i < ip.Blocks && i < common.InodeDirectRefs; i++ {
		if err := tbl.bs.Free(ip.Direct[i]); err != nil {
			return err
		}
	}
	if i < ip.Blocks {
		refs, err := tbl.bs.Read(ip.Indirect)
		if err != nil {
			return err
		}
		for ; i < ip.Blocks; i++ {
			if err := tbl.bs.Free(bnumGet(refs, i-common.InodeDirectRefs)); err != nil {
				return err
			}
		}
		if err := tbl.bs.Free(ip.Indirect); err != nil {
			return err
		}
	}
	ip.Size = 0
	ip.Blocks = 0
	util.DPrintf(3, "clearUnsafe: inum %d\n", inum)
	return nil
}

// Extend assigns one more data block to i-node inum and returns it.
// The caller must hold the i-node's write lock.
func (tbl *Table) Extend(inum common.Inum) (common.Bnum, error) {
	if !validInum(inum) {
		return 0, ErrBadInum
	}
	if !tbl.taken.IsTaken(uint64(inum)) {
		return 0, ErrFreeInum
	}
	return tbl.extendUnsafe(inum)
}

func (tbl *Table) extendUnsafe(inum common.Inum) (common.Bnum, error) {
	ip := &tbl.slots[inum]
	if ip.Blocks >= common.InodeDirectRefs+common.MaxIndirectRefs {
		return 0, ErrFileFull
	}
	b, err := tbl.bs.Alloc()
	if err != nil {
		return 0, err
	}
	if ip.Blocks < common.InodeDirectRefs {
		ip.Direct[ip.Blocks] = b
	} else {
		// crossing into indirect territory allocates the reference
		// block, exactly once per i-node
		transition := ip.Blocks == common.InodeDirectRefs
		if transition {
			ib, err := tbl.bs.Alloc()
			if err != nil {
				tbl.bs.Free(b)
				return 0, err
			}
			ip.Indirect = ib
		}
		if err := tbl.putIndirect(ip.Indirect, ip.Blocks-common.InodeDirectRefs, b); err != nil {
			tbl.bs.Free(b)
			if transition {
				tbl.bs.Free(ip.Indirect)
			}
			return 0, err
		}
	}
	ip.Blocks += 1
	util.DPrintf(5, "extendUnsafe: inum %d block %d count %d\n", inum, b, ip.Blocks)
	return b, nil
}

// BlockAt resolves the logical block index idx of i-node inum to a
// physical block number. The caller must hold the i-node's lock.
func (tbl *Table) BlockAt(inum common.Inum, idx uint64) (common.Bnum, error) {
	if !validInum(inum) {
		return 0, ErrBadInum
	}
	if !tbl.taken.IsTaken(uint64(inum)) {
		return 0, ErrFreeInum
	}
	ip := &tbl.slots[inum]
	if idx >= ip.Blocks {
		return 0, ErrBadIndex
	}
	if idx < common.InodeDirectRefs {
		return ip.Direct[idx], nil
	}
	refs, err := tbl.bs.Read(ip.Indirect)
	if err != nil {
		return 0, err
	}
	return bnumGet(refs, idx-common.InodeDirectRefs), nil
}

// The indirect block is an array of 8-byte block numbers.

func bnumGet(blk disk.Block, off uint64) common.Bnum {
	dec := marshal.NewDec(blk[off*8 : off*8+8])
	return common.Bnum(dec.GetInt())
}

func bnumPut(blk disk.Block, off uint64, b common.Bnum) {
	enc := marshal.NewEnc(8)
	enc.PutInt(uint64(b))
	copy(blk[off*8:off*8+8], enc.Finish())
}

func (tbl *Table) putIndirect(ib common.Bnum, off uint64, b common.Bnum) error {
	refs, err := tbl.bs.Read(ib)
	if err != nil {
		return err
	}
	bnumPut(refs, off, b)
	return tbl.bs.Write(ib, refs)
}

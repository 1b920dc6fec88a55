package inode

import (
	"bytes"
	"errors"

	"github.com/tchajed/marshal"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/disk"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/util"
)

var (
	ErrNotDir    = errors.New("inode: not a directory")
	ErrEmptyName = errors.New("inode: empty name")
	ErrDirFull   = errors.New("inode: directory is full")
	ErrNotFound  = errors.New("inode: name not found")
)

// Directory entries live in the directory's single content block as
// fixed-width records: an 8-byte inumber followed by a MaxFileName-byte
// NUL-padded name. nilInum marks an empty record.
const nilInum = ^uint64(0)

type dirEnt struct {
	inum common.Inum
	name string
}

// Names are stored truncated to MaxFileName-1 bytes. A stored name is
// therefore always shorter than MaxFileName, so string equality against
// it matches comparing the first MaxFileName bytes.
func encodeDirEnt(de dirEnt) []byte {
	buf := make([]byte, common.DirEntSz)
	enc := marshal.NewEnc(8)
	enc.PutInt(uint64(de.inum))
	copy(buf[:8], enc.Finish())
	n := uint64(len(de.name))
	if n > common.MaxFileName-1 {
		n = common.MaxFileName - 1
	}
	copy(buf[8:8+n], de.name)
	return buf
}

func decodeDirEnt(b []byte) (dirEnt, bool) {
	dec := marshal.NewDec(b[:8])
	inum := dec.GetInt()
	if inum == nilInum {
		return dirEnt{}, false
	}
	name := b[8 : 8+common.MaxFileName]
	end := bytes.IndexByte(name, 0)
	if end < 0 {
		end = len(name)
	}
	return dirEnt{inum: common.Inum(inum), name: string(name[:end])}, true
}

func emptyDirBlock() disk.Block {
	enc := marshal.NewEnc(8)
	enc.PutInt(nilInum)
	empty := enc.Finish()
	blk := make(disk.Block, common.BlockSize)
	for i := uint64(0); i < common.MaxDirEntries; i++ {
		copy(blk[i*common.DirEntSz:], empty)
	}
	return blk
}

// Find looks name up in directory dir; the first matching non-empty
// entry wins.
func (tbl *Table) Find(dir common.Inum, name string) (common.Inum, error) {
	if !validInum(dir) {
		return 0, ErrBadInum
	}
	tbl.locks.RAcquire(uint64(dir))
	sub, err := tbl.findUnsafe(dir, name)
	tbl.locks.RRelease(uint64(dir))
	return sub, err
}

// findUnsafe requires at least the directory's read lock.
func (tbl *Table) findUnsafe(dir common.Inum, name string) (common.Inum, error) {
	util.StorageDelay() // i-node access
	ip := &tbl.slots[dir]
	if ip.Type != common.TDirectory {
		return 0, ErrNotDir
	}
	blk, err := tbl.bs.Read(ip.Direct[0])
	if err != nil {
		return 0, err
	}
	for i := uint64(0); i < common.MaxDirEntries; i++ {
		de, ok := decodeDirEnt(blk[i*common.DirEntSz : (i+1)*common.DirEntSz])
		if ok && de.name == name {
			return de.inum, nil
		}
	}
	return 0, ErrNotFound
}

// CreateIn returns the i-node named name in directory dir, creating one
// of the given type when the name is absent. Creation is idempotent on
// the name.
func (tbl *Table) CreateIn(dir common.Inum, t common.InodeType, name string) (common.Inum, error) {
	if !validInum(dir) {
		return 0, ErrBadInum
	}
	tbl.mu.Lock()
	tbl.locks.Acquire(uint64(dir))
	release := func() {
		tbl.locks.Release(uint64(dir))
		tbl.mu.Unlock()
	}

	sub, err := tbl.findUnsafe(dir, name)
	if err == nil {
		release()
		return sub, nil
	}
	if !errors.Is(err, ErrNotFound) {
		release()
		return 0, err
	}

	sub, err = tbl.createUnsafe(t)
	if err != nil {
		release()
		return 0, err
	}
	if err := tbl.addEntryUnsafe(dir, sub, name); err != nil {
		tbl.clearUnsafe(sub)
		tbl.taken.FreeNum(uint64(sub))
		release()
		return 0, err
	}
	release()
	util.DPrintf(3, "CreateIn: %q -> inum %d\n", name, sub)
	return sub, nil
}

// addEntryUnsafe requires tbl.mu and the directory's write lock.
func (tbl *Table) addEntryUnsafe(dir common.Inum, sub common.Inum, name string) error {
	if !validInum(dir) || !validInum(sub) {
		return ErrBadInum
	}
	util.StorageDelay() // i-node access
	ip := &tbl.slots[dir]
	if ip.Type != common.TDirectory {
		return ErrNotDir
	}
	if len(name) == 0 {
		return ErrEmptyName
	}
	blk, err := tbl.bs.Read(ip.Direct[0])
	if err != nil {
		return err
	}
	for i := uint64(0); i < common.MaxDirEntries; i++ {
		if _, ok := decodeDirEnt(blk[i*common.DirEntSz : (i+1)*common.DirEntSz]); !ok {
			copy(blk[i*common.DirEntSz:], encodeDirEnt(dirEnt{inum: sub, name: name}))
			return tbl.bs.Write(ip.Direct[0], blk)
		}
	}
	return ErrDirFull
}

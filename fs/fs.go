// Package fs assembles the file system: the path-based public surface
// over the i-node table, block store, and open-file table. All files
// live in a single root directory.
package fs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/block"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/inode"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/util"
)

var ErrInvalidPath = errors.New("fs: invalid path")

type Flag uint64

const (
	OCreate Flag = 1 << iota
	OTrunc
	OAppend
)

type Fs struct {
	blocks *block.Store
	inodes *inode.Table
	files  *fileTbl
}

// MkFs creates a file system over an in-memory arena.
func MkFs() (*Fs, error) {
	return mkFs(block.MkStore())
}

// MkFsAt creates a file system whose arena is laid over a host file.
func MkFsAt(path string) (*Fs, error) {
	bs, err := block.MkStoreAt(path)
	if err != nil {
		return nil, err
	}
	return mkFs(bs)
}

func mkFs(bs *block.Store) (*Fs, error) {
	fs := &Fs{
		blocks: bs,
		inodes: inode.MkTable(bs),
		files:  mkFileTbl(),
	}
	root, err := fs.inodes.Create(common.TDirectory)
	if err != nil {
		bs.Close()
		return nil, err
	}
	if root != common.RootDirInum {
		bs.Close()
		return nil, fmt.Errorf("fs: root directory created at i-node %d", root)
	}
	util.DPrintf(1, "mkFs: root inum %d\n", root)
	return fs, nil
}

// Destroy tears down the file system without waiting for open handles.
func (fs *Fs) Destroy() error {
	return fs.blocks.Close()
}

// DestroyAfterAllClosed blocks until every open handle has been closed,
// then tears down.
func (fs *Fs) DestroyAfterAllClosed() error {
	fs.files.waitAllClosed()
	return fs.Destroy()
}

// splitPath validates "/name" and returns name. The root itself is not
// addressable, so a path of just "/" is invalid.
func splitPath(path string) (string, error) {
	if len(path) <= 1 || path[0] != '/' {
		return "", ErrInvalidPath
	}
	name := path[1:]
	if strings.IndexByte(name, '/') >= 0 {
		return "", ErrInvalidPath
	}
	return name, nil
}

// Lookup resolves path to an inumber.
func (fs *Fs) Lookup(path string) (common.Inum, error) {
	name, err := splitPath(path)
	if err != nil {
		return 0, err
	}
	return fs.inodes.Find(common.RootDirInum, name)
}

// Create makes path as an i-node of the given type, or returns the
// existing i-node of that name.
func (fs *Fs) Create(path string, t common.InodeType) (common.Inum, error) {
	name, err := splitPath(path)
	if err != nil {
		return 0, err
	}
	return fs.inodes.CreateIn(common.RootDirInum, t, name)
}

// Open returns a handle on path.
//
// OCreate creates the file if the name is absent. OTrunc drops the
// file's contents after locating it, invalidating the cursors of other
// handles on the same i-node. OAppend makes every read and write start
// at the current end of file.
func (fs *Fs) Open(path string, flags Flag) (int, error) {
	var inum common.Inum
	var err error
	if flags&OCreate != 0 {
		inum, err = fs.Create(path, common.TFile)
	} else {
		inum, err = fs.Lookup(path)
	}
	if err != nil {
		return 0, err
	}
	if flags&OTrunc != 0 {
		if err := fs.inodes.Clear(inum); err != nil {
			return 0, err
		}
	}
	// if the open-file table is full, a file created above stays created
	return fs.files.open(inum, flags&OAppend != 0)
}

// Close releases the handle fd.
func (fs *Fs) Close(fd int) error {
	return fs.files.close(fd)
}

// Check verifies the table-level ownership invariants.
func (fs *Fs) Check() error {
	return fs.inodes.Check()
}

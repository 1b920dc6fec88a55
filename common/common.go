// Package common holds the constants and shared types of the file system.
package common

import (
	"github.com/Ricardo-Luis-Projects/ist-so-p1/disk"
)

// Inum is the index of an i-node in the i-node table.
type Inum uint64

// Bnum is the index of a data block in the block store.
type Bnum = uint64

type InodeType uint64

const (
	TFile InodeType = iota
	TDirectory
)

const (
	BlockSize uint64 = disk.BlockSize

	DataBlocks      uint64 = 1024
	InodeTableSize  uint64 = 128
	InodeDirectRefs uint64 = 10
	MaxFileName     uint64 = 40
	MaxOpenFiles    uint64 = 20

	RootDirInum Inum = 0
)

// Derived sizes. A directory entry is an 8-byte inumber followed by a
// fixed-width name; an indirect reference is an 8-byte block number.
const (
	DirEntSz        uint64 = 8 + MaxFileName
	MaxDirEntries   uint64 = BlockSize / DirEntSz
	MaxIndirectRefs uint64 = BlockSize / 8
	MaxFileSize     uint64 = BlockSize * (InodeDirectRefs + MaxIndirectRefs)
)

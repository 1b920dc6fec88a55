// Package disk provides the byte arena backing the block store: a
// logical block-addressed device that lives either in memory or on a
// host file.
package disk

import (
	"github.com/tchajed/goose/machine/disk"
)

// Block is a BlockSize-byte buffer
type Block = disk.Block

const BlockSize uint64 = disk.BlockSize

// Disk provides access to a logical block-based device
type Disk interface {
	// Read reads a disk block by address
	//
	// Expects a < Size().
	Read(a uint64) (Block, error)

	// ReadTo reads the disk block at a and stores the result in b
	//
	// Expects a < Size().
	ReadTo(a uint64, b Block) error

	// Write updates a disk block by address
	//
	// Expects a < Size().
	Write(a uint64, v Block) error

	// Size reports how big the disk is, in blocks
	Size() uint64

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}

// Package alloc implements the free/taken bitmaps behind the i-node
// table and the block store. Numbers are handed out first-fit so a
// freed slot is reused as soon as possible.
package alloc

import (
	"errors"
	"math/bits"
	"sync"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/util"
)

var ErrOutOfRange = errors.New("alloc: number out of range")

type Alloc struct {
	lock   *sync.Mutex // protects bitmap and nfree
	n      uint64
	bitmap []byte
	nfree  uint64
}

func MkAlloc(n uint64) *Alloc {
	a := &Alloc{
		lock:   new(sync.Mutex),
		n:      n,
		bitmap: make([]byte, util.RoundUp(n, 8)),
		nfree:  n,
	}
	return a
}

// Find the first zero bit in blk and toggle it
func findAndMark(blk []byte, n uint64) (uint64, bool) {
	for byteNum := uint64(0); byteNum < uint64(len(blk)); byteNum++ {
		if byteNum%common.BlockSize == 0 {
			util.StorageDelay() // bitmap traversal
		}
		byteVal := blk[byteNum]
		if byteVal == 0xff {
			continue
		}
		for bit := uint64(0); bit < 8; bit++ {
			if byteVal&(1<<bit) == 0 {
				num := byteNum*8 + bit
				if num >= n {
					return 0, false
				}
				blk[byteNum] |= 1 << bit
				return num, true
			}
		}
	}
	return 0, false
}

// Clear bit num in blk
func freeBit(blk []byte, num uint64) {
	byteNum := num / 8
	bit := num % 8
	blk[byteNum] = blk[byteNum] & ^(1 << bit)
}

// AllocNum returns the first free number, marking it taken.
func (a *Alloc) AllocNum() (uint64, bool) {
	a.lock.Lock()
	num, ok := findAndMark(a.bitmap, a.n)
	if ok {
		a.nfree -= 1
	}
	a.lock.Unlock()
	util.DPrintf(10, "AllocNum: %d %v\n", num, ok)
	return num, ok
}

// FreeNum returns num to the free pool. Freeing an already-free number
// is a no-op; callers must not double-free.
func (a *Alloc) FreeNum(num uint64) error {
	if num >= a.n {
		return ErrOutOfRange
	}
	util.StorageDelay()
	a.lock.Lock()
	if a.bitmap[num/8]&(1<<(num%8)) != 0 {
		freeBit(a.bitmap, num)
		a.nfree += 1
	}
	a.lock.Unlock()
	util.DPrintf(10, "FreeNum: %d\n", num)
	return nil
}

// MarkUsed claims a specific number.
func (a *Alloc) MarkUsed(num uint64) error {
	if num >= a.n {
		return ErrOutOfRange
	}
	a.lock.Lock()
	if a.bitmap[num/8]&(1<<(num%8)) == 0 {
		a.bitmap[num/8] |= 1 << (num % 8)
		a.nfree -= 1
	}
	a.lock.Unlock()
	return nil
}

// IsTaken reports whether num is currently allocated.
//
// The answer is only stable while the caller prevents concurrent
// allocation, as the consistency checker does.
func (a *Alloc) IsTaken(num uint64) bool {
	if num >= a.n {
		panic("IsTaken")
	}
	a.lock.Lock()
	taken := a.bitmap[num/8]&(1<<(num%8)) != 0
	a.lock.Unlock()
	return taken
}

func (a *Alloc) NumFree() uint64 {
	a.lock.Lock()
	nfree := a.nfree
	a.lock.Unlock()
	return nfree
}

func popCnt(b byte) uint64 {
	return uint64(bits.OnesCount8(b))
}

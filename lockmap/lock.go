// lockmap is a fixed table of reader/writer locks.
//
// The API is as if every number in [0, n) had its own lock:
// LockTbl.Acquire(i) acquires lock i for writing and LockTbl.Release(i)
// releases it; RAcquire/RRelease are the shared (reader) variants. The
// table here is small and static, so unlike a sharded map the locks are
// simply stored in an array indexed by number.
package lockmap

import (
	"sync"
)

type LockTbl struct {
	locks []sync.RWMutex
}

func MkLockTbl(n uint64) *LockTbl {
	a := &LockTbl{
		locks: make([]sync.RWMutex, n),
	}
	return a
}

func (lt *LockTbl) Acquire(num uint64) {
	lt.locks[num].Lock()
}

func (lt *LockTbl) Release(num uint64) {
	lt.locks[num].Unlock()
}

func (lt *LockTbl) RAcquire(num uint64) {
	lt.locks[num].RLock()
}

func (lt *LockTbl) RRelease(num uint64) {
	lt.locks[num].RUnlock()
}

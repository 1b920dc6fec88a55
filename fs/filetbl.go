package fs

import (
	"errors"
	"sync"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/util"
)

var (
	ErrBadHandle = errors.New("fs: invalid file handle")
	ErrNoHandles = errors.New("fs: open-file table is full")
	ErrBadOffset = errors.New("fs: offset is past the end of file")
)

type openFile struct {
	mu         sync.Mutex // guards offset and appendMode across an I/O
	inum       common.Inum
	appendMode bool
	offset     uint64
}

type fileTbl struct {
	mu    sync.Mutex // guards taken and count
	cond  *sync.Cond // signaled when count drops to zero
	files [common.MaxOpenFiles]openFile
	taken [common.MaxOpenFiles]bool
	count uint64
}

func mkFileTbl() *fileTbl {
	t := &fileTbl{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// open claims the first free slot and returns its index as the handle.
func (t *fileTbl) open(inum common.Inum, appendMode bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for fd := 0; fd < int(common.MaxOpenFiles); fd++ {
		if !t.taken[fd] {
			t.taken[fd] = true
			t.files[fd].inum = inum
			t.files[fd].appendMode = appendMode
			t.files[fd].offset = 0
			t.count += 1
			util.DPrintf(3, "open: fd %d inum %d append %v\n", fd, inum, appendMode)
			return fd, nil
		}
	}
	return 0, ErrNoHandles
}

func (t *fileTbl) close(fd int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fd < 0 || fd >= int(common.MaxOpenFiles) || !t.taken[fd] {
		return ErrBadHandle
	}
	t.taken[fd] = false
	t.count -= 1
	if t.count == 0 {
		t.cond.Broadcast()
	}
	util.DPrintf(3, "close: fd %d\n", fd)
	return nil
}

// entry resolves fd to its slot.
func (t *fileTbl) entry(fd int) (*openFile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fd < 0 || fd >= int(common.MaxOpenFiles) || !t.taken[fd] {
		return nil, ErrBadHandle
	}
	return &t.files[fd], nil
}

// waitAllClosed blocks until the open count reaches zero. The predicate
// is re-checked after every wakeup.
func (t *fileTbl) waitAllClosed() {
	t.mu.Lock()
	for t.count > 0 {
		t.cond.Wait()
	}
	t.mu.Unlock()
}

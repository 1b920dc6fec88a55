package fs

import (
	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
	"github.com/Ricardo-Luis-Projects/ist-so-p1/util"
)

// Write writes data at fd's cursor, extending the file as needed. The
// count is clamped to the file's remaining capacity; the clamped count
// is returned, and may be 0 when the file is full. A handle opened with
// OAppend writes at the end of file regardless of its cursor.
func (fs *Fs) Write(fd int, data []byte) (int, error) {
	f, err := fs.files.entry(fd)
	if err != nil {
		return 0, err
	}

	f.mu.Lock()
	ip, err := fs.inodes.Get(f.inum)
	if err != nil {
		f.mu.Unlock()
		return 0, err
	}
	fs.inodes.Lock(f.inum)
	unlock := func() {
		fs.inodes.Unlock(f.inum)
		f.mu.Unlock()
	}

	if f.appendMode {
		f.offset = ip.Size
	}
	if f.offset > ip.Size {
		// the i-node was truncated through another handle
		unlock()
		return 0, ErrBadOffset
	}

	toWrite := uint64(len(data))
	if toWrite > common.MaxFileSize-f.offset {
		toWrite = common.MaxFileSize - f.offset
	}
	util.DPrintf(5, "Write: fd %d inum %d off %d n %d\n", fd, f.inum, f.offset, toWrite)

	// a failure below keeps the bytes already copied and sizes the file
	// to match; there is no rollback
	fail := func(err error) (int, error) {
		if f.offset > ip.Size {
			ip.Size = f.offset
		}
		unlock()
		return 0, err
	}

	for written := uint64(0); written < toWrite; {
		bi := f.offset / common.BlockSize
		within := f.offset % common.BlockSize

		if bi == ip.Blocks {
			if _, err := fs.inodes.Extend(f.inum); err != nil {
				return fail(err)
			}
		}
		b, err := fs.inodes.BlockAt(f.inum, bi)
		if err != nil {
			return fail(err)
		}
		blk, err := fs.blocks.Read(b)
		if err != nil {
			return fail(err)
		}
		n := util.Min(common.BlockSize-within, toWrite-written)
		copy(blk[within:within+n], data[written:written+n])
		if err := fs.blocks.Write(b, blk); err != nil {
			return fail(err)
		}
		f.offset += n
		written += n
	}

	if f.offset > ip.Size {
		ip.Size = f.offset
	}
	unlock()
	return int(toWrite), nil
}

// Read reads from fd's cursor into buf. The count is clamped to the
// bytes remaining in the file; the clamped count is returned, and is 0
// at end of file. A handle opened with OAppend reads from the end of
// file regardless of its cursor.
func (fs *Fs) Read(fd int, buf []byte) (int, error) {
	f, err := fs.files.entry(fd)
	if err != nil {
		return 0, err
	}

	f.mu.Lock()
	ip, err := fs.inodes.Get(f.inum)
	if err != nil {
		f.mu.Unlock()
		return 0, err
	}
	fs.inodes.RLock(f.inum)
	unlock := func() {
		fs.inodes.RUnlock(f.inum)
		f.mu.Unlock()
	}

	if f.appendMode {
		f.offset = ip.Size
	}
	if f.offset > ip.Size {
		// the i-node was truncated through another handle
		unlock()
		return 0, ErrBadOffset
	}

	toRead := uint64(len(buf))
	if toRead > ip.Size-f.offset {
		toRead = ip.Size - f.offset
	}
	util.DPrintf(5, "Read: fd %d inum %d off %d n %d\n", fd, f.inum, f.offset, toRead)

	for read := uint64(0); read < toRead; {
		bi := f.offset / common.BlockSize
		within := f.offset % common.BlockSize

		b, err := fs.inodes.BlockAt(f.inum, bi)
		if err != nil {
			unlock()
			return 0, err
		}
		blk, err := fs.blocks.Read(b)
		if err != nil {
			unlock()
			return 0, err
		}
		n := util.Min(common.BlockSize-within, toRead-read)
		copy(buf[read:read+n], blk[within:within+n])
		f.offset += n
		read += n
	}

	unlock()
	return int(toRead), nil
}

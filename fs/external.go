package fs

import (
	"golang.org/x/sys/unix"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
)

// CopyToHost streams the file at src to the host-OS path dst,
// truncating dst if it exists.
func (fs *Fs) CopyToHost(src string, dst string) error {
	fd, err := fs.Open(src, 0)
	if err != nil {
		return err
	}
	out, err := unix.Open(dst, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0666)
	if err != nil {
		fs.Close(fd)
		return err
	}

	buf := make([]byte, common.BlockSize)
	for {
		n, err := fs.Read(fd, buf)
		if err != nil {
			unix.Close(out)
			fs.Close(fd)
			return err
		}
		if n == 0 {
			break
		}
		if _, err := unix.Write(out, buf[:n]); err != nil {
			unix.Close(out)
			fs.Close(fd)
			return err
		}
	}

	if err := unix.Close(out); err != nil {
		fs.Close(fd)
		return err
	}
	return fs.Close(fd)
}

package fs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ricardo-Luis-Projects/ist-so-p1/common"
)

func TestCopyToHost(t *testing.T) {
	assert := assert.New(t)
	fs, err := MkFs()
	assert.NoError(err)

	content := bytes.Repeat([]byte("0123456789"), int(common.BlockSize/2))
	fd, err := fs.Open("/src", OCreate)
	assert.NoError(err)
	n, err := fs.Write(fd, content)
	assert.NoError(err)
	assert.Equal(len(content), n)
	assert.NoError(fs.Close(fd))

	dst := filepath.Join(t.TempDir(), "out")
	assert.NoError(fs.CopyToHost("/src", dst))

	got, err := os.ReadFile(dst)
	assert.NoError(err)
	assert.Equal(content, got)

	assert.NoError(fs.CopyToHost("/src", dst), "destination is truncated and rewritten")
	got, err = os.ReadFile(dst)
	assert.NoError(err)
	assert.Equal(content, got)

	assert.Error(fs.CopyToHost("/missing", dst))
	assert.NoError(fs.Destroy())
}

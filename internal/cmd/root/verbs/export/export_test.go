package export

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileKeepsCompleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	err := writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "workbook")
		return err
	})
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(b))
}

func TestWriteFileRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	boom := errors.New("disk full")

	err := writeFile(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "half a work")
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileCreateFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.xlsx")

	called := false
	err := writeFile(path, func(io.Writer) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

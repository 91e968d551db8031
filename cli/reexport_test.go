package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.beancount")
	assert.NoError(t, os.WriteFile(path, []byte("old\n"), 0o640))

	t.Run("Replaces", func(t *testing.T) {
		err := writeFileAtomic(path, func(f *os.File) error {
			_, err := f.WriteString("new\n")
			return err
		})
		assert.NoError(t, err)

		content, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, "new\n", string(content))

		info, err := os.Stat(path)
		assert.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	})

	t.Run("FailureKeepsOriginal", func(t *testing.T) {
		boom := errors.New("boom")
		err := writeFileAtomic(path, func(f *os.File) error {
			_, _ = f.WriteString("partial")
			return boom
		})
		assert.IsError(t, err, boom)

		content, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, "new\n", string(content))

		entries, err := os.ReadDir(filepath.Dir(path))
		assert.NoError(t, err)
		assert.Equal(t, 1, len(entries))
	})

	t.Run("MissingTarget", func(t *testing.T) {
		err := writeFileAtomic(filepath.Join(t.TempDir(), "missing.beancount"), func(*os.File) error {
			return nil
		})
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("FollowsSymlink", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "real.beancount")
		assert.NoError(t, os.WriteFile(target, []byte("old\n"), 0o644))
		link := filepath.Join(dir, "main.beancount")
		assert.NoError(t, os.Symlink(target, link))

		err := writeFileAtomic(link, func(f *os.File) error {
			_, err := f.WriteString("new\n")
			return err
		})
		assert.NoError(t, err)

		content, err := os.ReadFile(target)
		assert.NoError(t, err)
		assert.Equal(t, "new\n", string(content))

		info, err := os.Lstat(link)
		assert.NoError(t, err)
		assert.True(t, info.Mode()&os.ModeSymlink != 0, "link is kept")
	})
}

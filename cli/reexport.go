package cli

import (
	"os"
	"path/filepath"
)

// writeFileAtomic replaces path with what write produces. The data goes to
// a temporary file in the same directory which is renamed over path once it
// is complete; on any failure the temporary file is removed and path is
// left untouched. The original file mode is kept. A symlink is followed so
// its target is rewritten, not the link.
func writeFileAtomic(path string, write func(*os.File) error) error {
	path, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()

	writeErr := write(tmp)
	if writeErr == nil {
		writeErr = tmp.Sync()
	}
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(name)
		return writeErr
	}
	if closeErr != nil {
		_ = os.Remove(name)
		return closeErr
	}

	if err := os.Chmod(name, info.Mode().Perm()); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}

package archive

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/validanfse/validanfse/internal/common"
)

// RecreateDir removes dir and rebuilds it empty, so no document from a
// previous run can leak into the current one.
func RecreateDir(dir string) error {
	if err := RemoveDir(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.NewAppError("SCRATCH_CREATE", "could not create scratch directory", err)
	}
	return nil
}

// RemoveDir deletes dir and everything under it. Archive tools sometimes
// leave read-only attributes behind; a failed removal is retried once after
// forcing everything under dir writable.
func RemoveDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		forceWritable(dir)
		if err := os.RemoveAll(dir); err != nil {
			return common.NewAppError("SCRATCH_CLEANUP", "could not remove scratch directory", err)
		}
	}
	return nil
}

func forceWritable(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		mode := fs.FileMode(0o644)
		if d.IsDir() {
			mode = 0o755
		}
		_ = os.Chmod(path, mode)
		return nil
	})
}

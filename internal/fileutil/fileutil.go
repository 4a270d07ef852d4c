// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Rollback tracks files created during a multi-step operation so they can all
// be removed if any later step fails. The pipelines register every chunk or
// temp file they create and arm the rollback via CleanupOnError.
type Rollback struct {
	paths []string
}

// Add registers a created path for removal on failure.
func (r *Rollback) Add(path string) {
	r.paths = append(r.paths, path)
}

// Forget drops a path from the rollback set, used once a file has been
// renamed to its committed name.
func (r *Rollback) Forget(path string) {
	for i, p := range r.paths {
		if p == path {
			r.paths = append(r.paths[:i], r.paths[i+1:]...)

			return
		}
	}
}

// CleanupOnError removes every registered path if the operation failed.
// Caller must defer it with a pointer to its named error return.
func (r *Rollback) CleanupOnError(errp *error) {
	if *errp == nil {
		return
	}

	for _, path := range r.paths {
		os.Remove(path) //nolint:errcheck // best-effort cleanup
	}
}

// RestoreAttrs sets the permission bits and modification time of path.
// Callers treat failures as non-fatal.
func RestoreAttrs(path string, perm fs.FileMode, modTime time.Time) error {
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("restoring permissions: %w", err)
	}

	if err := os.Chtimes(path, modTime, modTime); err != nil {
		return fmt.Errorf("restoring timestamps: %w", err)
	}

	return nil
}

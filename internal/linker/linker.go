// Package linker mirrors a local source tree into the host's sandboxed
// storage location, so scripts edited in a normal working copy show up where
// the scripting environment can discover them. Watch mode keeps the mirror
// current via fsnotify.
package linker

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Mirror copies the tree rooted at src into dst, creating directories as
// needed and overwriting stale files. It returns the number of files copied.
func Mirror(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("linker: source: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("linker: source %q is not a directory", src)
	}

	copied := 0
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("linker: mirroring %q into %q: %w", src, dst, err)
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// remove drops the mirrored counterpart of a deleted source path.
func remove(src, dst, path string) error {
	rel, err := filepath.Rel(src, path)
	if err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(dst, rel))
}

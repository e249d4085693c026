package tools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyFile copies src to dst. Directories are copied recursively and merged
// into an existing destination tree. Files keep their mode and modification
// time. Copying a file onto an existing directory places it inside.
func (e *Executor) CopyFile(src, dst string) Result {
	e.record("copy_file", map[string]any{"src": src, "dst": dst})

	sp, dp := e.resolve(src), e.resolve(dst)
	si, err := e.fs.Stat(sp)
	if err != nil {
		if os.IsNotExist(err) {
			return failure(KindNotFound, "source not found: %s", src)
		}
		return classify(err, "copy", src)
	}

	if si.IsDir() {
		if sp == dp {
			return failure(KindInvalidArgument, "cannot copy %s onto itself", src)
		}
		if err := e.copyTree(sp, dp); err != nil {
			return classify(err, "copy", src+" -> "+dst)
		}
		return Result{Output: fmt.Sprintf("✅ Copied directory: %s -> %s", src, dst)}
	}

	if di, err := e.fs.Stat(dp); err == nil && di.IsDir() {
		dp = filepath.Join(dp, filepath.Base(sp))
	}
	if err := e.copyRegular(sp, dp, si); err != nil {
		return classify(err, "copy", src+" -> "+dst)
	}
	return Result{Output: fmt.Sprintf("✅ Copied file: %s -> %s\n📊 Size: %s", src, dst, formatSize(si.Size()))}
}

// copyTree copies src into dst. When dst lies inside src it is left out of
// the walk, so the copy does not descend into itself.
func (e *Executor) copyTree(src, dst string) error {
	return afero.Walk(e.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == dst && path != src {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return e.fs.MkdirAll(target, info.Mode().Perm()|0700)
		}
		return e.copyRegular(path, target, info)
	})
}

func (e *Executor) copyRegular(src, dst string, info os.FileInfo) error {
	if err := e.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := e.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := e.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := e.fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return e.fs.Chtimes(dst, info.ModTime(), info.ModTime())
}

// MoveFile renames src to dst, creating the destination's parent
// directories. Moving onto an existing directory places src inside it.
func (e *Executor) MoveFile(src, dst string) Result {
	e.record("move_file", map[string]any{"src": src, "dst": dst})

	sp, dp := e.resolve(src), e.resolve(dst)
	if _, err := e.fs.Stat(sp); err != nil {
		if os.IsNotExist(err) {
			return failure(KindNotFound, "source not found: %s", src)
		}
		return classify(err, "move", src)
	}
	if di, err := e.fs.Stat(dp); err == nil && di.IsDir() {
		dp = filepath.Join(dp, filepath.Base(sp))
	}
	if err := e.fs.MkdirAll(filepath.Dir(dp), 0755); err != nil {
		return classify(err, "move", src+" -> "+dst)
	}
	if err := e.fs.Rename(sp, dp); err != nil {
		return classify(err, "move", src+" -> "+dst)
	}
	return Result{Output: fmt.Sprintf("✅ Moved: %s -> %s", src, dst)}
}

// DeleteFile removes path. Directories are only removed when force is set.
func (e *Executor) DeleteFile(path string, force bool) Result {
	e.record("delete_file", map[string]any{"filepath": path, "force": force})

	p := e.resolve(path)
	fi, err := e.fs.Stat(p)
	if err != nil {
		return classify(err, "delete", path)
	}
	if fi.IsDir() {
		if !force {
			return failure(KindIsDirectory, "%s is a directory, use --force to delete it", path)
		}
		if err := e.fs.RemoveAll(p); err != nil {
			return classify(err, "delete", path)
		}
		return Result{Output: fmt.Sprintf("✅ Deleted directory: %s", path)}
	}
	if err := e.fs.Remove(p); err != nil {
		return classify(err, "delete", path)
	}
	return Result{Output: fmt.Sprintf("✅ Deleted file: %s", path)}
}

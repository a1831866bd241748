package annotation

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// IsImageFile reports whether name carries one of the allowed image
// extensions.
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(ImageExtensions, ext)
}

// ScanImages lists the image files directly inside folder, sorted
// lexicographically by name. Directories, hidden files and other files are
// skipped.
func ScanImages(fs afero.Fs, folder string) ([]string, error) {
	infos, err := afero.ReadDir(fs, folder)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", folder, err)
	}
	out := make([]string, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() || strings.HasPrefix(fi.Name(), ".") || !IsImageFile(fi.Name()) {
			continue
		}
		out = append(out, fi.Name())
	}
	slices.Sort(out)
	return out, nil
}

// WriteFileAtomic writes data to a sibling temp file and renames it over
// path, so readers observe either the old or the new content. The temp file
// is removed on any failure. An existing file keeps its permissions; perm
// applies to new files only.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	if info, err := fs.Stat(path); err == nil && info.Mode().IsRegular() {
		perm = info.Mode().Perm()
	}
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := fs.Chmod(tmpName, perm); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

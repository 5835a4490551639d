// Package fsops performs file IO for JSON records and avatar images under
// the data root. All paths are validated via safety before touching disk.
package fsops

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/ankitni/charchat/internal/safety"
)

// ReadJSON reads the record at relPath under absRoot and unmarshals it into v.
// Missing files are reported with os.ErrNotExist so callers can map absence
// to their own taxonomy.
func ReadJSON(absRoot, relPath string, v any) error {
	absPath, err := safety.ValidateRecordPath(absRoot, relPath)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// WriteJSONAtomic marshals v and writes it to relPath under absRoot via a
// temp file in the same directory followed by a rename, so a concurrent
// reader never observes a partially written record.
func WriteJSONAtomic(absRoot, relPath string, v any) error {
	absPath, err := safety.ValidateRecordPath(absRoot, relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, absPath); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// RemoveRecord deletes the record at relPath under absRoot. Missing files
// surface as os.ErrNotExist.
func RemoveRecord(absRoot, relPath string) error {
	absPath, err := safety.ValidateRecordPath(absRoot, relPath)
	if err != nil {
		return err
	}
	return os.Remove(absPath)
}

// ListRecords returns the names (without the .json suffix) of all JSON
// records in relDir under absRoot, sorted by the directory listing order
// os.ReadDir provides (lexicographic). A missing directory lists as empty.
func ListRecords(absRoot, relDir string) ([]string, error) {
	absDir, err := safety.ValidateRecordPath(absRoot, relDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		names = append(names, name[:len(name)-len(".json")])
	}
	return names, nil
}

// CopyAvatar copies the image at srcPath (an arbitrary caller-supplied path)
// to relDest under absRoot and returns the destination's absolute path. The
// destination is validated; the source is read as-is.
func CopyAvatar(absRoot, srcPath, relDest string) (string, error) {
	absDest, err := safety.ValidateRecordPath(absRoot, relDest)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(absDest), 0o755); err != nil {
		return "", err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(absDest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(absDest)
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return absDest, nil
}

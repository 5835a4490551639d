// Package safety validates filesystem paths under the charchat data root.
//
// Persona ids and avatar filenames are user-influenced and become path
// segments, so every record path is checked against the resolved data root
// before any read or write.
package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathError is a machine-readable policy violation.
type PathError struct {
	Code    string
	Message string
}

func (e PathError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InitDataRoot resolves the absolute data root directory, creating it when
// missing. An empty root defaults to ".charchat" under the home directory,
// falling back to the working directory when no home dir exists.
func InitDataRoot(root string) (string, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		root = filepath.Join(home, ".charchat")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("abs(dataRoot): %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("mkdir dataRoot: %w", err)
	}

	// Resolve symlinks so later boundary checks compare like with like.
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	return abs, nil
}

// ValidateRecordPath resolves relPath against absRoot and returns an absolute
// path inside the data root. Absolute inputs, parent traversal, and symlink
// escapes are rejected with a PathError.
func ValidateRecordPath(absRoot, relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", PathError{Code: "ERR_PATH_OUTSIDE_DATA_ROOT", Message: "absolute paths are not allowed"}
	}

	cleaned := filepath.Clean(relPath)
	if cleaned == "" || cleaned == "." {
		return "", PathError{Code: "ERR_EMPTY_RECORD_PATH", Message: "record path must name a file"}
	}

	candidate := filepath.Join(absRoot, cleaned)

	// Best-effort symlink resolution: resolve the whole candidate when it
	// exists, otherwise resolve the deepest existing ancestor and rejoin the
	// leaf so an escape via a symlinked parent is still visible.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else {
		parent := filepath.Dir(candidate)
		if resolvedParent, err2 := filepath.EvalSymlinks(parent); err2 == nil {
			candidate = filepath.Join(resolvedParent, filepath.Base(candidate))
		}
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", PathError{Code: "ERR_PATH_OUTSIDE_DATA_ROOT", Message: "record path resolves outside the data root"}
	}

	return candidate, nil
}

// ValidRecordName reports whether name is safe as a single path segment for a
// stored record: lowercase ASCII letters, digits, '-' and '_', non-empty.
// Persona ids are produced in this alphabet by the store; this guards records
// addressed by externally supplied ids.
func ValidRecordName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

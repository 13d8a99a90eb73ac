// Package output writes generated files to disk.
//
// Files are written atomically: content goes to a temporary file in the
// destination directory, is synced, and is then renamed over the target,
// so readers never observe a half-written file.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/contestgen/internal/errors"
)

// Action describes what a write did.
type Action string

const (
	ActionWritten Action = "written"
	ActionSkipped Action = "skipped"
	ActionUpdated Action = "updated"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFileAtomic writes data to path via a temporary file and rename,
// creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return writeErr(path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return writeErr(path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return writeErr(path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return writeErr(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return writeErr(path, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return writeErr(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return writeErr(path, err)
	}
	return nil
}

// WriteIfAbsent writes data to path unless a file already exists there.
// With force set an existing file is replaced.
func WriteIfAbsent(path string, data []byte, force bool) (Action, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil && !force:
		return ActionSkipped, nil
	case err == nil:
		if err := WriteFileAtomic(path, data); err != nil {
			return "", err
		}
		return ActionUpdated, nil
	case !os.IsNotExist(err):
		return "", writeErr(path, err)
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return ActionWritten, nil
}

// MarkerLine returns the line that opens a managed block.
func MarkerLine(marker string) string {
	return fmt.Sprintf("# <<< %s >>>", marker)
}

// EnsureBlock appends block to the file at path unless a block with the
// same marker is already present. The block is separated from existing
// content by one blank line and always ends with a newline. A missing file
// is created holding just the block.
func EnsureBlock(path, marker, block string) (Action, error) {
	start := MarkerLine(marker)

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", writeErr(path, err)
	}
	txt := string(existing)
	if HasBlock(txt, marker) {
		return ActionSkipped, nil
	}

	if !strings.HasPrefix(strings.TrimLeft(block, "\n"), start) {
		block = start + "\n" + block
	}
	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}

	if txt != "" {
		if !strings.HasSuffix(txt, "\n") {
			txt += "\n"
		}
		if !strings.HasSuffix(txt, "\n\n") {
			txt += "\n"
		}
	}

	action := ActionUpdated
	if os.IsNotExist(err) {
		action = ActionWritten
	}
	if err := WriteFileAtomic(path, []byte(txt+block)); err != nil {
		return "", err
	}
	return action, nil
}

// HasBlock reports whether txt holds the opening line of the block named
// marker. The marker only counts on a line of its own.
func HasBlock(txt, marker string) bool {
	line := MarkerLine(marker)
	for _, l := range strings.Split(txt, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}

func writeErr(path string, err error) error {
	return errors.New("E146").
		WithDetail(path).
		Wrap(err)
}

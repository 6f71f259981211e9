package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// ResolvePaths validates the source directory and establishes the target
// directory, creating it (including parents) when missing. An empty target
// means convert in place.
func ResolvePaths(sourceDir, targetDir string) (Job, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return Job{}, errors.Mark(errors.Wrapf(err, "source directory %q", sourceDir), ErrInvalidSource)
	}
	if !info.IsDir() {
		return Job{}, errors.Mark(errors.Newf("source %q is not a directory", sourceDir), ErrInvalidSource)
	}
	if targetDir == "" {
		targetDir = sourceDir
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Job{}, errors.Wrapf(err, "create target directory %q", targetDir)
	}
	return Job{SourceDir: sourceDir, TargetDir: targetDir}, nil
}

// NextAvailableName returns name when it is free, otherwise the first
// name_1.ext, name_2.ext, ... variant that is neither present in dir nor in
// the reserved set. It never touches the filesystem beyond stat calls.
func NextAvailableName(dir, name string, reserved map[string]bool) string {
	if nameAvailable(dir, name, reserved) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		cand := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if nameAvailable(dir, cand, reserved) {
			return cand
		}
	}
}

func nameAvailable(dir, name string, reserved map[string]bool) bool {
	if reserved[name] {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, name))
	return os.IsNotExist(err)
}

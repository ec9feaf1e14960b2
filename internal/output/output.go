// Package output persists rendered artifacts for --write.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirName is the directory under the user's home that --write uses.
const DirName = ".d2o"

// DefaultDir returns ~/.d2o.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// FileName builds "<name>.<ext>" with path separators in name replaced, so
// that a command name can never escape the output directory.
func FileName(name, ext string) string {
	name = strings.NewReplacer("/", "_", `\`, "_", " ", "-").Replace(name)
	name = strings.TrimLeft(name, "._")
	if name == "" {
		name = "command"
	}
	return name + "." + ext
}

// Write stores content at dir/<name>.<ext>, replacing an existing file, and
// returns the written path.
func Write(dir, name, ext, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create output directory %q: %w", dir, err)
	}

	path := filepath.Join(dir, FileName(name, ext))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("could not write output file: %w", err)
	}

	return path, nil
}

// Package vcs locates the root of a version-controlled working copy.
package vcs

import (
	"fmt"
	"os"
	"path/filepath"
)

// markers identify a working-copy root, checked in order.
var markers = []string{".git", ".hg", ".svn"}

// FindRoot walks up from dir to the nearest directory containing a
// version-control marker.
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("vcs: resolve %s: %w", dir, err)
	}
	for cur := abs; ; {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur, nil
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("vcs: no working copy found above %s", abs)
		}
		cur = parent
	}
}

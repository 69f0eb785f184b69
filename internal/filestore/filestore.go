// Package filestore persists uploaded revision binaries under a per-part directory.
package filestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// FileStore writes and removes revision files. Keys are slash separated and
// always rooted at a part id: "<partID>/<stage>_v<N><ext>".
type FileStore interface {
	// Put stores r under key and returns the path recorded on the revision.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	// RemoveAll drops every file of a part.
	RemoveAll(ctx context.Context, partID string) error
}

// RevisionFileName is the deterministic name of a revision file, e.g. design_v1.stl.
func RevisionFileName(stage string, version int, ext string) string {
	return fmt.Sprintf("%s_v%d%s", stage, version, strings.ToLower(ext))
}

func RevisionKey(partID, stage string, version int, ext string) string {
	return path.Join(partID, RevisionFileName(stage, version, ext))
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid file key %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("invalid file key %q", key)
		}
	}
	return nil
}

package resolver

import (
	"fmt"
	"path/filepath"
)

// FilePath rewrites file paths relative to the document location. When a
// document is written to a file, paths are stored relative to its
// directory; when it is read back, they are expanded against it again.
// Moving the document together with the referenced files preserves
// resolution. Without a file-backed document (empty Context.Root) paths
// pass through unchanged.
type FilePath struct{}

// NewFilePath constructs a file-path resolver.
func NewFilePath() FilePath {
	return FilePath{}
}

// Encode converts an absolute path into a path relative to the document
// directory.
func (FilePath) Encode(ctx Context, value any) (any, error) {
	path, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("resolver: file path must be a string, got %T", value)
	}
	if ctx.Root == "" {
		return path, nil
	}
	root, err := filepath.Abs(ctx.Root)
	if err != nil {
		return nil, fmt.Errorf("resolver: resolve document root: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: resolve file path %q: %w", path, err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		// Different volume or similar; keep the absolute path.
		return abs, nil
	}
	return rel, nil
}

// Decode expands a stored relative path against the document directory.
func (FilePath) Decode(ctx Context, value any) (any, error) {
	path, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("resolver: file path must be a string, got %T", value)
	}
	if ctx.Root == "" || filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(filepath.Join(ctx.Root, path))
	if err != nil {
		return nil, fmt.Errorf("resolver: expand file path %q: %w", path, err)
	}
	return abs, nil
}

// EncodedType reports the string wire shape.
func (FilePath) EncodedType() Type {
	return TypeString
}

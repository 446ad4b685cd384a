package objects

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Class-reference key markers. A key looks like
// $<pkgpath>.<Type>, optionally prefixed with <package>: when the
// declaring package name differs from the import-path head, and suffixed
// with ==<version> when a version was recorded.
const (
	objectTag  = "$"
	packageTag = ":"
	versionTag = "=="
)

// Dict is a string-keyed mapping that preserves insertion order, both for
// iteration and for YAML marshalling. Documents produced by ToDocument
// are built from Dicts so argument order follows constructor declaration
// order deterministically.
type Dict struct {
	keys   []string
	values map[string]any
}

// NewDict constructs an empty Dict.
func NewDict() *Dict {
	return &Dict{values: make(map[string]any)}
}

// Set stores value under key, keeping the key's original position when it
// is already present.
func (d *Dict) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	value, ok := d.values[key]
	return value, ok
}

// Has reports whether key is present.
func (d *Dict) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Map returns a shallow map copy, losing ordering.
func (d *Dict) Map() map[string]any {
	if d == nil {
		return nil
	}
	out := make(map[string]any, len(d.keys))
	for key, value := range d.values {
		out[key] = value
	}
	return out
}

// MarshalYAML renders the Dict as a mapping node with keys in insertion
// order.
func (d *Dict) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range d.keys {
		keyNode := &yaml.Node{}
		keyNode.SetString(key)
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(d.values[key]); err != nil {
			return nil, fmt.Errorf("objects: marshal key %q: %w", key, err)
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

// isClassKey reports whether a document mapping key is a class reference.
func isClassKey(key string) bool {
	return strings.HasPrefix(key, objectTag)
}

// buildClassKey renders the class reference for cls, including the
// recorded version when requested and known.
func buildClassKey(cls *Class, version string, includeVersion bool) string {
	key := objectTag
	if cls.pkgName != "" && cls.pkgName != pathHead(cls.pkgPath) {
		key += cls.pkgName + packageTag
	}
	key += cls.pkgPath + "." + cls.name
	if includeVersion && version != "" {
		key += versionTag + version
	}
	return key
}

// splitClassKey parses a class reference into its package name, class
// path (pkgpath.Type, the registry lookup key) and recorded version. The
// leading $ may be omitted; missing parts default sensibly.
func splitClassKey(key string) (pkgName, classPath, version string, err error) {
	trimmed := strings.TrimPrefix(key, objectTag)
	if rest, v, found := strings.Cut(trimmed, versionTag); found {
		trimmed, version = rest, v
	}
	if name, rest, found := strings.Cut(trimmed, packageTag); found {
		pkgName, trimmed = name, rest
	}
	if trimmed == "" || !strings.Contains(trimmed, ".") {
		return "", "", "", fmt.Errorf("objects: malformed class key %q", key)
	}
	if pkgName == "" {
		pkgName = pathHead(trimmed)
	}
	return pkgName, trimmed, version, nil
}

func pathHead(path string) string {
	head, _, _ := strings.Cut(path, "/")
	return head
}

package objects

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-objects/resolver"
)

// Option configures a single encode or decode call.
type Option func(*config)

type config struct {
	registry       *Registry
	includeVersion bool
	root           string
	warnings       WarningHook
	overrides      map[string]any
	loader         ClassLoader
	signatureWarn  WarnLevel
	packageWarn    WarnLevel
	flatten        bool
}

func newConfig(opts []Option) *config {
	cfg := &config{
		registry:       DefaultRegistry,
		includeVersion: true,
		warnings:       DefaultWarningHook,
		signatureWarn:  WarnStandard,
		packageWarn:    WarnStandard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (cfg *config) warn(w Warning) {
	if cfg.warnings != nil {
		cfg.warnings.Notify(w)
	}
}

// child returns the configuration used for nested objects: the same
// call-wide settings minus the per-call decode overrides, which apply to
// the root object only.
func (cfg *config) child() *config {
	nested := *cfg
	nested.overrides = nil
	return &nested
}

// WithRegistry routes class lookups through r instead of the default
// registry.
func WithRegistry(r *Registry) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.registry = r
		}
	}
}

// WithoutVersion omits package versions from the class references an
// encode produces.
func WithoutVersion() Option {
	return func(cfg *config) {
		cfg.includeVersion = false
	}
}

// WithRoot sets the directory file-path resolvers relativize against.
// The YAML file helpers set it to the document's directory automatically.
func WithRoot(root string) Option {
	return func(cfg *config) {
		cfg.root = root
	}
}

// WithWarningHook routes advisory warnings to hook instead of the
// default logger.
func WithWarningHook(hook WarningHook) Option {
	return func(cfg *config) {
		cfg.warnings = hook
	}
}

// WithWarnLevel sets the reporting threshold for signature-drift
// warnings during decode.
func WithWarnLevel(level WarnLevel) Option {
	return func(cfg *config) {
		cfg.signatureWarn = level
	}
}

// WithPackageWarnLevel sets the reporting threshold for package-version
// warnings.
func WithPackageWarnLevel(level WarnLevel) Option {
	return func(cfg *config) {
		cfg.packageWarn = level
	}
}

// WithFlatten makes ToDocument produce a flat dotted-key document
// instead of a nested one. Flat documents cannot be decoded back.
func WithFlatten() Option {
	return func(cfg *config) {
		cfg.flatten = true
	}
}

// WithOverrides supplies decode-time argument overrides for the root
// object. Overrides win over stored values, defaults, and hidden
// defaults.
func WithOverrides(overrides map[string]any) Option {
	return func(cfg *config) {
		cfg.overrides = overrides
	}
}

// WithClassLoader installs a callback invoked when a document references
// a class missing from the registry, giving the caller a chance to
// register it before decode fails.
func WithClassLoader(loader ClassLoader) Option {
	return func(cfg *config) {
		cfg.loader = loader
	}
}

// ToDocument encodes v into its document form: a single-entry Dict
// keyed by the class reference, holding the non-hidden constructor
// arguments in declaration order. With WithFlatten the nested form is
// collapsed into dotted keys instead.
func ToDocument(v any, opts ...Option) (*Dict, error) {
	cfg := newConfig(opts)
	doc, err := encodeObject(cfg, v)
	if err != nil {
		return nil, err
	}
	if cfg.flatten {
		return flattenDict(doc)
	}
	return doc, nil
}

func encodeObject(cfg *config, v any) (*Dict, error) {
	cls, err := cfg.registry.ClassOf(v)
	if err != nil {
		return nil, err
	}
	args, _, err := cls.harvest(v)
	if err != nil {
		return nil, err
	}

	version := installedVersion(cls.pkgPath, cls.version)
	if cfg.includeVersion && version == "" && cfg.packageWarn >= WarnStandard {
		cfg.warn(Warning{
			Kind:    WarnNoVersion,
			Class:   cls.Key(),
			Message: fmt.Sprintf("no version found for package %q", cls.pkgPath),
		})
	}

	body := NewDict()
	for _, name := range args.Keys() {
		raw, _ := args.Get(name)
		encoded, err := encodeValue(cfg, cls, name, raw)
		if err != nil {
			return nil, err
		}
		body.Set(name, encoded)
	}
	doc := NewDict()
	doc.Set(buildClassKey(cls, version, cfg.includeVersion), body)
	return doc, nil
}

// encodeValue runs the parameter's resolver, if any, then default-encodes
// the result so nested objects inside resolver output still serialize.
func encodeValue(cfg *config, cls *Class, name string, value any) (any, error) {
	if r := cls.resolverFor(name); r != nil && value != nil {
		encoded, err := r.Encode(resolver.Context{Root: cfg.root}, value)
		if err != nil {
			return nil, &SerializationError{Class: cls.name, Param: name, Err: err}
		}
		value = encoded
	}
	encoded, err := encodeDefault(cfg, value)
	if err != nil {
		if serr, ok := err.(*SerializationError); ok && serr.Class == "" {
			serr.Class = cls.name
			serr.Param = name
		}
		return nil, err
	}
	return encoded, nil
}

// encodeDefault converts a value into document-safe form: scalars pass
// through, sequences and string-keyed maps recurse, registered types
// nest as sub-documents. Anything else refuses to encode.
func encodeDefault(cfg *config, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *Dict:
		out := NewDict()
		for _, key := range v.Keys() {
			raw, _ := v.Get(key)
			encoded, err := encodeDefault(cfg, raw)
			if err != nil {
				return nil, err
			}
			out.Set(key, encoded)
		}
		return out, nil
	}
	if _, err := cfg.registry.ClassOf(value); err == nil {
		return encodeObject(cfg.child(), value)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return value, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return encodeDefault(cfg, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			encoded, err := encodeDefault(cfg, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &SerializationError{TypeName: rv.Type().String()}
		}
		keys := make([]string, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		out := NewDict()
		for _, key := range keys {
			encoded, err := encodeDefault(cfg, rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, err
			}
			out.Set(key, encoded)
		}
		return out, nil
	}
	return nil, &SerializationError{TypeName: fmt.Sprintf("%T", value)}
}

// flattenDict collapses a nested document into dotted keys. Class
// reference keys contribute no segment; sequence elements use their
// index. A collision between produced keys fails the encode.
func flattenDict(doc *Dict) (*Dict, error) {
	flat := NewDict()
	if err := flattenInto(flat, "", doc); err != nil {
		return nil, err
	}
	return flat, nil
}

func flattenInto(flat *Dict, prefix string, value any) error {
	switch v := value.(type) {
	case *Dict:
		for _, key := range v.Keys() {
			raw, _ := v.Get(key)
			next := prefix
			if !isClassKey(key) {
				next = joinKey(prefix, key)
			}
			if err := flattenInto(flat, next, raw); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, item := range v {
			if err := flattenInto(flat, joinKey(prefix, strconv.Itoa(i)), item); err != nil {
				return err
			}
		}
		return nil
	}
	if flat.Has(prefix) {
		return &SerializationError{Key: prefix}
	}
	flat.Set(prefix, value)
	return nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// ToYAML encodes v and writes its YAML rendition to w.
func ToYAML(w io.Writer, v any, opts ...Option) error {
	doc, err := ToDocument(v, opts...)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("objects: marshal yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ToYAMLString encodes v and returns its YAML rendition.
func ToYAMLString(v any, opts ...Option) (string, error) {
	doc, err := ToDocument(v, opts...)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("objects: marshal yaml: %w", err)
	}
	return string(data), nil
}

// ToYAMLFile encodes v into a YAML file at path, creating parent
// directories as needed. File-path resolvers relativize against the
// file's directory so the document stays valid when moved together with
// the files it references.
func ToYAMLFile(path string, v any, opts ...Option) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("objects: create directory %q: %w", dir, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("objects: create file %q: %w", path, err)
	}
	defer f.Close()
	return ToYAML(f, v, append([]Option{WithRoot(dir)}, opts...)...)
}

package objects

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-objects/resolver"
)

// ClassLoader is invoked when a document references a class missing from
// the registry. It should register the class (typically by triggering
// the declaring package's registration) and return nil; decode then
// retries the lookup once.
type ClassLoader func(pkgName, classPath, version string) error

// FromDocument rebuilds an instance from its document form: a
// single-entry mapping keyed by a class reference. Stored arguments are
// reconciled against the class's current signature; drift is reported
// through the warning hook, and only arguments that are required now but
// recoverable from nowhere fail the decode.
func FromDocument(doc any, opts ...Option) (any, error) {
	cfg := newConfig(opts)
	return decodeDocument(cfg, doc)
}

func decodeDocument(cfg *config, doc any) (any, error) {
	key, payload, err := splitDocument(doc)
	if err != nil {
		return nil, err
	}
	pkgName, classPath, recorded, err := splitClassKey(key)
	if err != nil {
		return nil, &UnresolvableClassError{Key: key, Err: err}
	}

	cls, ok := cfg.registry.ClassByKey(classPath)
	if !ok && cfg.loader != nil {
		if err := cfg.loader(pkgName, classPath, recorded); err != nil {
			return nil, &UnresolvableClassError{Key: key, Err: err}
		}
		cls, ok = cfg.registry.ClassByKey(classPath)
	}
	if !ok {
		return nil, &UnresolvableClassError{Key: key}
	}

	installed := installedVersion(cls.pkgPath, cls.version)
	warnPackageMismatch(cfg, cls, recorded, installed)

	args, err := reconcile(cfg, cls, payload, recorded, installed)
	if err != nil {
		return nil, err
	}
	return cls.ctor(args)
}

// splitDocument extracts the single class-reference entry from a decoded
// document.
func splitDocument(doc any) (key string, payload any, err error) {
	keys, get, ok := asMapping(doc)
	if !ok {
		return "", nil, fmt.Errorf("objects: document must be a mapping, got %T", doc)
	}
	if len(keys) != 1 || !isClassKey(keys[0]) {
		return "", nil, &UnresolvableClassError{
			Key: strings.Join(keys, ", "),
			Err: fmt.Errorf("document must hold exactly one class reference"),
		}
	}
	return keys[0], get(keys[0]), nil
}

// asMapping gives uniform ordered access to a document node that may be
// a Dict (in-memory round trip) or a plain map (YAML decode). Plain map
// keys are sorted for determinism.
func asMapping(value any) (keys []string, get func(string) any, ok bool) {
	switch v := value.(type) {
	case nil:
		return nil, func(string) any { return nil }, true
	case *Dict:
		return v.Keys(), func(key string) any {
			item, _ := v.Get(key)
			return item
		}, true
	case map[string]any:
		keys = make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return keys, func(key string) any { return v[key] }, true
	}
	return nil, nil, false
}

// reconcile merges the stored arguments, the current signature's
// defaults, and the caller's overrides into the argument set the
// constructor receives.
func reconcile(cfg *config, cls *Class, payload any, recorded, installed string) (*Args, error) {
	storedKeys, stored, ok := asMapping(payload)
	if !ok {
		return nil, fmt.Errorf("objects: class %s: arguments must be a mapping, got %T", cls.name, payload)
	}

	values := make(map[string]any)
	var order []string
	supply := func(name string, value any) {
		if _, ok := values[name]; !ok {
			order = append(order, name)
		}
		values[name] = value
	}

	// Stored arguments unknown to the current signature become extras
	// when the constructor accepts them, and are dropped otherwise.
	var dropped []string
	var extraKeys []string
	extras := make(map[string]any)
	declared := make(map[string]bool, len(cls.sig.Params))
	for _, p := range cls.sig.Params {
		declared[p.Name] = true
	}
	for _, key := range storedKeys {
		if declared[key] {
			continue
		}
		if cls.sig.AcceptsExtras {
			decoded, err := decodeValue(cfg, cls, key, stored(key))
			if err != nil {
				return nil, err
			}
			extras[key] = decoded
			extraKeys = append(extraKeys, key)
			continue
		}
		dropped = append(dropped, key)
	}
	if len(dropped) > 0 && cfg.signatureWarn >= WarnStandard {
		sort.Strings(dropped)
		cfg.warn(Warning{
			Kind:   WarnDroppedArgument,
			Class:  cls.Key(),
			Params: dropped,
			Message: fmt.Sprintf("ignoring arguments %s not supported by %s",
				formatParams(dropped), cls.Key()),
		})
	}

	overridden := make(map[string]bool, len(cfg.overrides))
	var defaulted, missing []string
	for _, p := range cls.sig.Params {
		if override, ok := cfg.overrides[p.Name]; ok {
			overridden[p.Name] = true
			supply(p.Name, override)
			continue
		}
		if p.Hidden {
			supply(p.Name, p.Default)
			continue
		}
		if hasKey(storedKeys, p.Name) {
			decoded, err := decodeValue(cfg, cls, p.Name, stored(p.Name))
			if err != nil {
				return nil, err
			}
			supply(p.Name, decoded)
			continue
		}
		if p.HasDefault {
			supply(p.Name, p.Default)
			defaulted = append(defaulted, p.Name)
			continue
		}
		missing = append(missing, p.Name)
	}
	if len(defaulted) > 0 && cfg.signatureWarn >= WarnVerbose {
		sort.Strings(defaulted)
		cfg.warn(Warning{
			Kind:   WarnMissingOptional,
			Class:  cls.Key(),
			Params: defaulted,
			Message: fmt.Sprintf("filling missing optional arguments %s of %s with defaults",
				formatParams(defaulted), cls.Key()),
		})
	}

	// Overrides naming no declared parameter join the extras of an
	// open constructor, and are otherwise ignored with a warning.
	var ignored []string
	for name, value := range cfg.overrides {
		if overridden[name] {
			continue
		}
		if cls.sig.AcceptsExtras {
			if _, ok := extras[name]; !ok {
				extraKeys = append(extraKeys, name)
			}
			extras[name] = value
			continue
		}
		ignored = append(ignored, name)
	}
	if len(ignored) > 0 && cfg.signatureWarn >= WarnStandard {
		sort.Strings(ignored)
		cfg.warn(Warning{
			Kind:   WarnIgnoredOverride,
			Class:  cls.Key(),
			Params: ignored,
			Message: fmt.Sprintf("ignoring overrides %s not supported by %s",
				formatParams(ignored), cls.Key()),
		})
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingArgumentError{
			Class:     cls.Key(),
			Params:    missing,
			Recorded:  recorded,
			Installed: installed,
		}
	}

	base := Object{loaded: true}
	if cls.sig.AcceptsExtras {
		sort.Strings(extraKeys)
		bag := newExtrasBag()
		for _, key := range extraKeys {
			bag.set(key, extras[key])
		}
		base.extras = bag
	}
	return &Args{base: base, values: values, order: order}, nil
}

// decodeValue rebuilds a stored argument value: nested sub-documents
// recurse through FromDocument, containers recurse element-wise, and the
// parameter's resolver runs last when the stored node matches its wire
// shape.
func decodeValue(cfg *config, cls *Class, name string, value any) (any, error) {
	decoded, err := defaultDecode(cfg, value)
	if err != nil {
		return nil, err
	}
	if r := cls.resolverFor(name); r != nil && r.EncodedType().Matches(decoded) {
		resolved, err := r.Decode(resolver.Context{Root: cfg.root}, decoded)
		if err != nil {
			return nil, &ValueDecodeError{Class: cls.name, Param: name, Err: err}
		}
		return resolved, nil
	}
	return decoded, nil
}

func defaultDecode(cfg *config, value any) (any, error) {
	if keys, get, ok := asMapping(value); ok && value != nil {
		if len(keys) == 1 && isClassKey(keys[0]) {
			return decodeDocument(cfg.child(), value)
		}
		out := make(map[string]any, len(keys))
		for _, key := range keys {
			decoded, err := defaultDecode(cfg, get(key))
			if err != nil {
				return nil, err
			}
			out[key] = decoded
		}
		return out, nil
	}
	if items, ok := value.([]any); ok {
		out := make([]any, len(items))
		for i, item := range items {
			decoded, err := defaultDecode(cfg, item)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	}
	return value, nil
}

func hasKey(keys []string, name string) bool {
	for _, key := range keys {
		if key == name {
			return true
		}
	}
	return false
}

// FromYAML decodes a YAML document from r and rebuilds its object.
func FromYAML(r io.Reader, opts ...Option) (any, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("objects: decode yaml: %w", err)
	}
	return FromDocument(doc, opts...)
}

// FromYAMLString rebuilds an object from a YAML string.
func FromYAMLString(s string, opts ...Option) (any, error) {
	return FromYAML(strings.NewReader(s), opts...)
}

// FromYAMLFile rebuilds an object from a YAML file. File-path resolvers
// resolve against the file's directory.
func FromYAMLFile(path string, opts ...Option) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("objects: open file %q: %w", path, err)
	}
	defer f.Close()
	return FromYAML(f, append([]Option{WithRoot(filepath.Dir(path))}, opts...)...)
}

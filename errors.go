package objects

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a class-definition problem: a hidden
// parameter without a default, a declared parameter with no matching
// struct field, an unusable borrow carrier, or an extras bag that a
// constructor failed to forward. It is raised eagerly, at class
// registration or at first harvest.
type ConfigurationError struct {
	Class  string
	Params []string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Params) > 0 {
		return fmt.Sprintf("objects: class %s: parameters %s: %s", e.Class, formatParams(e.Params), e.Reason)
	}
	return fmt.Sprintf("objects: class %s: %s", e.Class, e.Reason)
}

// SerializationError reports an encode-time failure: a value whose type
// has no applicable resolver and no default encoding, or a flatten key
// collision. Encoding never degrades silently; it fails instead.
type SerializationError struct {
	Class    string
	Param    string
	TypeName string
	Key      string
	Err      error
}

func (e *SerializationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("objects: ")
	if e.Class != "" {
		fmt.Fprintf(&b, "class %s: ", e.Class)
	}
	if e.Param != "" {
		fmt.Fprintf(&b, "parameter %q: ", e.Param)
	}
	switch {
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	case e.Key != "":
		fmt.Fprintf(&b, "flatten collision on key %q", e.Key)
	default:
		fmt.Fprintf(&b, "cannot encode type %s; register a resolver", e.TypeName)
	}
	return b.String()
}

func (e *SerializationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MissingArgumentError reports required current-signature parameters that
// are present neither in the stored document nor in the caller-supplied
// overrides.
type MissingArgumentError struct {
	Class     string
	Params    []string
	Recorded  string
	Installed string
}

func (e *MissingArgumentError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("objects: missing mandatory arguments %s while instantiating %s", formatParams(e.Params), e.Class)
	if e.Recorded != "" || e.Installed != "" {
		msg += fmt.Sprintf(" from version %q when using version %q", e.Recorded, e.Installed)
	}
	return msg
}

// UnresolvableClassError reports a document whose class reference cannot
// be resolved against the registry, even after the optional class loader
// ran.
type UnresolvableClassError struct {
	Key string
	Err error
}

func (e *UnresolvableClassError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("objects: cannot resolve class %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("objects: cannot resolve class %q", e.Key)
}

func (e *UnresolvableClassError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValueDecodeError reports a resolver that rejected a stored node during
// decode.
type ValueDecodeError struct {
	Class string
	Param string
	Err   error
}

func (e *ValueDecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("objects: class %s: decode parameter %q: %v", e.Class, e.Param, e.Err)
}

func (e *ValueDecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func formatParams(params []string) string {
	return "[" + strings.Join(params, ", ") + "]"
}

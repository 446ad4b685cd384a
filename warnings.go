package objects

import (
	"log"
	"sync"
)

// WarnLevel controls how advisory signature and package mismatches are
// reported. Warnings are never fatal; they narrate drift between a stored
// document and the current code.
type WarnLevel int

const (
	// WarnSilent suppresses all advisory warnings.
	WarnSilent WarnLevel = iota
	// WarnStandard reports dropped stored arguments and packages older
	// than the recording version.
	WarnStandard
	// WarnVerbose additionally reports defaulted optional arguments and
	// any package version difference.
	WarnVerbose
)

// String returns the level name.
func (l WarnLevel) String() string {
	switch l {
	case WarnSilent:
		return "silent"
	case WarnStandard:
		return "standard"
	case WarnVerbose:
		return "verbose"
	}
	return "unknown"
}

// WarningKind identifies the advisory condition a Warning describes.
type WarningKind string

const (
	// WarnDroppedArgument: a stored argument is unknown to the current
	// signature and was dropped.
	WarnDroppedArgument WarningKind = "dropped_argument"
	// WarnMissingOptional: an optional current-signature parameter was
	// absent from the document and filled with its default.
	WarnMissingOptional WarningKind = "missing_optional"
	// WarnIgnoredOverride: a caller-supplied override names a parameter
	// unknown to the current signature.
	WarnIgnoredOverride WarningKind = "ignored_override"
	// WarnPackageMismatch: the recorded package version differs from the
	// installed one.
	WarnPackageMismatch WarningKind = "package_mismatch"
	// WarnNoVersion: no version could be determined for the declaring
	// package at encode time.
	WarnNoVersion WarningKind = "no_version"
)

// Warning is an advisory condition emitted during encode or decode.
type Warning struct {
	Kind      WarningKind
	Class     string
	Params    []string
	Recorded  string
	Installed string
	Message   string
}

// WarningHook receives advisory warnings.
type WarningHook interface {
	Notify(Warning)
}

// WarningHookFunc adapts a function to WarningHook.
type WarningHookFunc func(Warning)

// Notify dispatches to the underlying function.
func (fn WarningHookFunc) Notify(w Warning) {
	if fn != nil {
		fn(w)
	}
}

// DefaultWarningHook logs warnings via the standard library logger. It is
// used when no hook is configured on a call.
var DefaultWarningHook WarningHook = WarningHookFunc(func(w Warning) {
	log.Printf("objects: %s", w.Message)
})

// WarningCollector is a WarningHook that records every warning it
// receives, safe for concurrent use.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []Warning
}

// Notify appends w to the collected warnings.
func (c *WarningCollector) Notify(w Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, w)
}

// Warnings returns a copy of the collected warnings.
func (c *WarningCollector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

package objects_test

import (
	"errors"
	"reflect"
	"testing"

	objects "github.com/goliatone/go-objects"
)

// document builds an in-memory document for the class key of v with a
// handcrafted argument payload, simulating a file written by an earlier
// signature.
func document(t *testing.T, v any, args map[string]any) map[string]any {
	t.Helper()
	return map[string]any{classKey(t, v): args}
}

func TestDecodeDropsUnknownArguments(t *testing.T) {
	doc := document(t, newTuner(1, nil, "x", false), map[string]any{
		"sampling_rate": 8000,
		"bit_depth":     24, // removed from the signature since recording
	})
	collector := &objects.WarningCollector{}
	got, err := objects.FromDocument(doc, objects.WithWarningHook(collector))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tuner := got.(*Tuner)
	if tuner.SamplingRate != 8000 {
		t.Errorf("sampling_rate = %d", tuner.SamplingRate)
	}
	warnings := collector.Warnings()
	found := false
	for _, w := range warnings {
		if w.Kind == objects.WarnDroppedArgument && reflect.DeepEqual(w.Params, []string{"bit_depth"}) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a dropped-argument warning, got %+v", warnings)
	}
}

func TestDecodeFillsMissingOptional(t *testing.T) {
	doc := document(t, newTuner(1, nil, "x", false), map[string]any{
		"sampling_rate": 8000,
	})
	got, err := objects.FromDocument(doc, objects.WithWarningHook(&objects.WarningCollector{}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tuner := got.(*Tuner)
	if tuner.Name != "tuner" {
		t.Errorf("name = %q, want declared default", tuner.Name)
	}
	if tuner.Window != nil {
		t.Errorf("window = %v, want default", tuner.Window)
	}
}

func TestDecodeMissingRequired(t *testing.T) {
	doc := document(t, newTuner(1, nil, "x", false), map[string]any{
		"name": "legacy",
	})
	_, err := objects.FromDocument(doc, objects.WithWarningHook(&objects.WarningCollector{}))
	var merr *objects.MissingArgumentError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MissingArgumentError, got %v", err)
	}
	if !reflect.DeepEqual(merr.Params, []string{"sampling_rate"}) {
		t.Errorf("missing = %v", merr.Params)
	}
	if merr.Recorded != "1.0.0" {
		t.Errorf("recorded version = %q", merr.Recorded)
	}
}

func TestDecodeOverrides(t *testing.T) {
	doc := document(t, newTuner(1, nil, "x", false), map[string]any{
		"sampling_rate": 8000,
		"name":          "stored",
	})
	got, err := objects.FromDocument(doc,
		objects.WithWarningHook(&objects.WarningCollector{}),
		objects.WithOverrides(map[string]any{
			"name":    "overridden",
			"verbose": true, // hidden parameters accept overrides too
		}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tuner := got.(*Tuner)
	if tuner.Name != "overridden" {
		t.Errorf("name = %q", tuner.Name)
	}
	if !tuner.Verbose {
		t.Error("hidden override not applied")
	}
}

func TestDecodeOverrideSuppliesMissingRequired(t *testing.T) {
	doc := document(t, newTuner(1, nil, "x", false), map[string]any{})
	got, err := objects.FromDocument(doc,
		objects.WithWarningHook(&objects.WarningCollector{}),
		objects.WithOverrides(map[string]any{"sampling_rate": 48000}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.(*Tuner).SamplingRate != 48000 {
		t.Errorf("sampling_rate = %d", got.(*Tuner).SamplingRate)
	}
}

func TestDecodeIgnoredOverrideWarns(t *testing.T) {
	doc := document(t, newTuner(1, nil, "x", false), map[string]any{
		"sampling_rate": 8000,
	})
	collector := &objects.WarningCollector{}
	if _, err := objects.FromDocument(doc,
		objects.WithWarningHook(collector),
		objects.WithOverrides(map[string]any{"no_such": 1})); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, w := range collector.Warnings() {
		if w.Kind == objects.WarnIgnoredOverride {
			found = true
		}
	}
	if !found {
		t.Error("expected an ignored-override warning")
	}
}

func TestDecodeOverridesApplyToRootOnly(t *testing.T) {
	pipe := &Pipeline{Tuner: newTuner(100, nil, "inner", false)}
	doc, err := objects.ToDocument(pipe)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	collector := &objects.WarningCollector{}
	got, err := objects.FromDocument(doc,
		objects.WithWarningHook(collector),
		objects.WithOverrides(map[string]any{"steps": []*Tuner{}}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inner := got.(*Pipeline).Tuner; inner.SamplingRate != 100 {
		t.Errorf("nested object affected by root overrides: %+v", inner)
	}
}

func TestWarnLevels(t *testing.T) {
	base := newTuner(1, nil, "x", false)
	drifted := map[string]any{
		"sampling_rate": 8000,
		"bit_depth":     24,
	}
	tests := []struct {
		name  string
		level objects.WarnLevel
		want  map[objects.WarningKind]bool
	}{
		{
			name:  "silent",
			level: objects.WarnSilent,
			want:  map[objects.WarningKind]bool{},
		},
		{
			name:  "standard",
			level: objects.WarnStandard,
			want: map[objects.WarningKind]bool{
				objects.WarnDroppedArgument: true,
			},
		},
		{
			name:  "verbose",
			level: objects.WarnVerbose,
			want: map[objects.WarningKind]bool{
				objects.WarnDroppedArgument: true,
				objects.WarnMissingOptional: true,
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			collector := &objects.WarningCollector{}
			_, err := objects.FromDocument(document(t, base, drifted),
				objects.WithWarningHook(collector),
				objects.WithWarnLevel(tc.level))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			got := map[objects.WarningKind]bool{}
			for _, w := range collector.Warnings() {
				got[w.Kind] = true
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("warnings = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPackageMismatchWarning(t *testing.T) {
	reg := objects.NewRegistry()
	cls := objects.MustClass(
		func(a *objects.Args) (*Tuner, error) {
			rate, err := objects.Arg[int](a, "sampling_rate")
			if err != nil {
				return nil, err
			}
			return &Tuner{Object: a.Base(), SamplingRate: rate}, nil
		},
		objects.Param("sampling_rate"),
		objects.Package("", "1.2.0"),
	)
	if err := reg.Add(cls); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Recorded by a newer release than the one installed now.
	doc := map[string]any{
		"$" + cls.Key() + "==2.0.0": map[string]any{"sampling_rate": 1},
	}
	collector := &objects.WarningCollector{}
	if _, err := objects.FromDocument(doc,
		objects.WithRegistry(reg),
		objects.WithWarningHook(collector)); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var mismatch *objects.Warning
	for _, w := range collector.Warnings() {
		if w.Kind == objects.WarnPackageMismatch {
			mismatch = &w
			break
		}
	}
	if mismatch == nil {
		t.Fatal("expected a package-mismatch warning")
	}
	if mismatch.Recorded != "2.0.0" || mismatch.Installed != "1.2.0" {
		t.Errorf("warning = %+v", mismatch)
	}

	// Installed newer than recorded: standard stays quiet, verbose reports.
	doc = map[string]any{
		"$" + cls.Key() + "==1.0.0": map[string]any{"sampling_rate": 1},
	}
	collector = &objects.WarningCollector{}
	if _, err := objects.FromDocument(doc,
		objects.WithRegistry(reg),
		objects.WithWarningHook(collector)); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, w := range collector.Warnings() {
		if w.Kind == objects.WarnPackageMismatch {
			t.Errorf("standard level must not report a newer installation: %+v", w)
		}
	}
	collector = &objects.WarningCollector{}
	if _, err := objects.FromDocument(doc,
		objects.WithRegistry(reg),
		objects.WithWarningHook(collector),
		objects.WithPackageWarnLevel(objects.WarnVerbose)); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, w := range collector.Warnings() {
		if w.Kind == objects.WarnPackageMismatch {
			found = true
		}
	}
	if !found {
		t.Error("verbose level must report any version difference")
	}
}

func TestDecodeUnknownClass(t *testing.T) {
	doc := map[string]any{
		"$example.com/gone.Widget==1.0.0": map[string]any{},
	}
	_, err := objects.FromDocument(doc)
	var uerr *objects.UnresolvableClassError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnresolvableClassError, got %v", err)
	}
}

func TestDecodeClassLoader(t *testing.T) {
	reg := objects.NewRegistry()
	key := classKey(t, newTuner(1, nil, "x", false))

	loaded := false
	loader := func(pkgName, classPath, version string) error {
		loaded = true
		cls, err := objects.NewClass(
			func(a *objects.Args) (*Tuner, error) {
				rate, err := objects.Arg[int](a, "sampling_rate")
				if err != nil {
					return nil, err
				}
				return &Tuner{Object: a.Base(), SamplingRate: rate}, nil
			},
			objects.Param("sampling_rate"),
			objects.Package("", version),
		)
		if err != nil {
			return err
		}
		return reg.Add(cls)
	}

	doc := map[string]any{key: map[string]any{"sampling_rate": 123}}
	got, err := objects.FromDocument(doc,
		objects.WithRegistry(reg),
		objects.WithClassLoader(loader),
		objects.WithWarningHook(&objects.WarningCollector{}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !loaded {
		t.Error("loader was not invoked")
	}
	if got.(*Tuner).SamplingRate != 123 {
		t.Errorf("sampling_rate = %d", got.(*Tuner).SamplingRate)
	}
}

func TestDecodeMalformedDocuments(t *testing.T) {
	for name, doc := range map[string]any{
		"not a mapping":   42,
		"empty mapping":   map[string]any{},
		"no class key":    map[string]any{"plain": 1},
		"malformed class": map[string]any{"$": map[string]any{}},
	} {
		if _, err := objects.FromDocument(doc); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

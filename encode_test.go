package objects_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	objects "github.com/goliatone/go-objects"
	"github.com/goliatone/go-objects/resolver"
)

func TestFlatten(t *testing.T) {
	pipe := &Pipeline{
		Tuner: newTuner(16000, []float64{0.1, 0.2}, "main", false),
	}
	flat, err := objects.ToDocument(pipe, objects.WithFlatten())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	checks := map[string]any{
		"tuner.sampling_rate": 16000,
		"tuner.window.0":      0.1,
		"tuner.window.1":      0.2,
		"tuner.name":          "main",
	}
	for key, want := range checks {
		got, ok := flat.Get(key)
		if !ok {
			t.Errorf("missing flat key %q in %v", key, flat.Keys())
			continue
		}
		if got != want {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
	for _, key := range flat.Keys() {
		if key == "" {
			continue
		}
		if key[0] == '$' {
			t.Errorf("flat key %q leaks a class reference", key)
		}
	}
}

func TestFlattenIsOneWay(t *testing.T) {
	flat, err := objects.ToDocument(newTuner(1, nil, "x", false), objects.WithFlatten())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := objects.FromDocument(flat); err == nil {
		t.Fatal("flat documents must not decode")
	}
}

// Colliding produces the same dotted key from two different shapes.
type Colliding struct {
	objects.Object

	A map[string]any
	B int `objects:"a.b"`
}

func TestFlattenCollision(t *testing.T) {
	reg := objects.NewRegistry()
	cls := objects.MustClass(
		func(a *objects.Args) (*Colliding, error) {
			return &Colliding{Object: a.Base()}, nil
		},
		objects.Param("a"),
		objects.Param("a.b"),
		objects.Package("", "1.0.0"),
	)
	if err := reg.Add(cls); err != nil {
		t.Fatalf("add: %v", err)
	}
	v := &Colliding{
		A: map[string]any{"b": 1},
		B: 2,
	}
	_, err := objects.ToDocument(v, objects.WithRegistry(reg), objects.WithFlatten())
	var serr *objects.SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SerializationError, got %v", err)
	}
	if serr.Key == "" {
		t.Errorf("collision error must name the key: %+v", serr)
	}
}

// Opaque holds a value with no wire shape and no resolver.
type Opaque struct {
	objects.Object

	Fn func()
}

func TestUnencodableValue(t *testing.T) {
	reg := objects.NewRegistry()
	cls := objects.MustClass(
		func(a *objects.Args) (*Opaque, error) {
			return &Opaque{Object: a.Base()}, nil
		},
		objects.Param("fn"),
	)
	if err := reg.Add(cls); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := objects.ToDocument(&Opaque{Fn: func() {}}, objects.WithRegistry(reg))
	var serr *objects.SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SerializationError, got %v", err)
	}
	if serr.Param != "fn" {
		t.Errorf("error must name the parameter: %+v", serr)
	}
}

func TestNonStringMapKeysRefuse(t *testing.T) {
	reg := objects.NewRegistry()
	type Keyed struct {
		objects.Object
		Table map[int]string
	}
	cls := objects.MustClass(
		func(a *objects.Args) (*Keyed, error) {
			return &Keyed{Object: a.Base()}, nil
		},
		objects.Param("table"),
	)
	if err := reg.Add(cls); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := objects.ToDocument(&Keyed{Table: map[int]string{1: "a"}}, objects.WithRegistry(reg))
	var serr *objects.SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SerializationError, got %v", err)
	}
}

func TestMapKeysSorted(t *testing.T) {
	sink := newSink("t", map[string]any{
		"zeta": 1, "alpha": 2, "mid": 3,
	})
	args, err := objects.Arguments(sink)
	if err != nil {
		t.Fatalf("arguments: %v", err)
	}
	want := []string{"target", "alpha", "mid", "zeta"}
	if !reflect.DeepEqual(args.Keys(), want) {
		t.Errorf("keys = %v, want %v", args.Keys(), want)
	}
}

// Recording references a data file through a path resolver.
type Recording struct {
	objects.Object

	Path string
}

var recordingClass = objects.MustRegister(
	func(a *objects.Args) (*Recording, error) {
		path, err := objects.Arg[string](a, "path")
		if err != nil {
			return nil, err
		}
		return &Recording{Object: a.Base(), Path: path}, nil
	},
	objects.Param("path", objects.WithResolver(resolver.FilePath{})),
	objects.Package("", "1.0.0"),
)

func TestFilePathRoundTripThroughFile(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	dataFile := filepath.Join(dataDir, "take1.wav")
	if err := os.WriteFile(dataFile, []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}

	docPath := filepath.Join(dir, "recording.yaml")
	if err := objects.ToYAMLFile(docPath, &Recording{Path: dataFile}); err != nil {
		t.Fatalf("encode: %v", err)
	}

	raw, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "path: data/take1.wav") {
		t.Errorf("stored path must be relative to the document:\n%s", raw)
	}

	// Move document and data together; the reference must survive.
	moved := filepath.Join(dir, "moved")
	if err := os.MkdirAll(moved, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(docPath, filepath.Join(moved, "recording.yaml")); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(dataDir, filepath.Join(moved, "data")); err != nil {
		t.Fatal(err)
	}

	got, err := objects.FromYAMLFile(filepath.Join(moved, "recording.yaml"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec := got.(*Recording)
	if !filepath.IsAbs(rec.Path) {
		t.Errorf("decoded path must be absolute, got %q", rec.Path)
	}
	if _, err := os.Stat(rec.Path); err != nil {
		t.Errorf("decoded path must point at the moved file: %v", err)
	}
}

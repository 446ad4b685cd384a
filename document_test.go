package objects

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDictOrder(t *testing.T) {
	d := NewDict()
	d.Set("zeta", 1)
	d.Set("alpha", 2)
	d.Set("mid", 3)
	d.Set("zeta", 4) // keeps position

	want := []string{"zeta", "alpha", "mid"}
	if !reflect.DeepEqual(d.Keys(), want) {
		t.Errorf("keys = %v, want %v", d.Keys(), want)
	}
	if v, _ := d.Get("zeta"); v != 4 {
		t.Errorf("zeta = %v", v)
	}

	data, err := yaml.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "zeta: 4\nalpha: 2\nmid: 3\n" {
		t.Errorf("yaml output out of order:\n%s", data)
	}
}

func TestSplitClassKey(t *testing.T) {
	tests := []struct {
		key       string
		pkgName   string
		classPath string
		version   string
		wantErr   bool
	}{
		{
			key:       "$example.com/audio/dsp.Filter==1.2.0",
			pkgName:   "example.com",
			classPath: "example.com/audio/dsp.Filter",
			version:   "1.2.0",
		},
		{
			key:       "$dsp:example.com/audio/v2.Filter==1.2.0",
			pkgName:   "dsp",
			classPath: "example.com/audio/v2.Filter",
			version:   "1.2.0",
		},
		{
			key:       "$example.com/audio/dsp.Filter",
			pkgName:   "example.com",
			classPath: "example.com/audio/dsp.Filter",
		},
		{key: "$", wantErr: true},
		{key: "$nodots", wantErr: true},
	}
	for _, tc := range tests {
		pkgName, classPath, version, err := splitClassKey(tc.key)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tc.key)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tc.key, err)
			continue
		}
		if pkgName != tc.pkgName || classPath != tc.classPath || version != tc.version {
			t.Errorf("%s: got (%q, %q, %q)", tc.key, pkgName, classPath, version)
		}
	}
}

func TestClassKeyRoundTrip(t *testing.T) {
	cls := &Class{
		name:    "Filter",
		pkgPath: "example.com/audio/dsp",
		pkgName: "dsp",
	}
	key := buildClassKey(cls, "0.3.1", true)
	if key != "$dsp:example.com/audio/dsp.Filter==0.3.1" {
		t.Errorf("key = %q", key)
	}
	pkgName, classPath, version, err := splitClassKey(key)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if pkgName != "dsp" || classPath != cls.Key() || version != "0.3.1" {
		t.Errorf("split = (%q, %q, %q)", pkgName, classPath, version)
	}

	// Package name matching the path head needs no prefix.
	cls.pkgName = "example.com"
	if key := buildClassKey(cls, "", false); key != "$example.com/audio/dsp.Filter" {
		t.Errorf("key = %q", key)
	}
}

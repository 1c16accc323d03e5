// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package presets

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltin(t *testing.T) {
	catalogue := Builtin()
	if len(catalogue.Presets) == 0 {
		t.Fatal("built-in catalogue is empty")
	}
	if _, ok := catalogue.Find("27-169"); !ok {
		t.Error("built-in catalogue has no 27-169 preset")
	}
}

func TestParseJSONC(t *testing.T) {
	catalogue, err := Parse([]byte(`{
  // lab wall
  "presets": [
    {"id": "lab", "name": "Lab Panel", "width": 100, "height": 50,},
    /* spare */
    {"id": "spare", "name": "Spare", "width": 10, "height": 10},
  ],
}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(catalogue.Presets) != 2 {
		t.Fatalf("got %d presets, want 2", len(catalogue.Presets))
	}
}

func TestParseRejectsInvalidCatalogue(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax", `{"presets": [}`},
		{"missing id", `{"presets": [{"name": "x", "width": 1, "height": 1}]}`},
		{"duplicate id", `{"presets": [
			{"id": "a", "name": "x", "width": 1, "height": 1},
			{"id": "A", "name": "y", "width": 1, "height": 1}]}`},
		{"zero width", `{"presets": [{"id": "a", "name": "x", "width": 0, "height": 1}]}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Parse([]byte(test.input)); err == nil {
				t.Error("Parse succeeded, want error")
			}
		})
	}
}

func TestFind(t *testing.T) {
	catalogue := &Catalogue{Presets: []Preset{
		{ID: "wide", Name: "Studio", Width: 1, Height: 1},
		{ID: "studio", Name: "Other", Width: 2, Height: 2},
	}}

	// An ID match wins over an earlier name match.
	preset, ok := catalogue.Find("STUDIO")
	if !ok || preset.ID != "studio" {
		t.Errorf("Find(STUDIO) = %+v, %v; want the preset with id studio", preset, ok)
	}
	preset, ok = catalogue.Find("other")
	if !ok || preset.ID != "studio" {
		t.Errorf("Find(other) = %+v, %v", preset, ok)
	}
	if _, ok := catalogue.Find("missing"); ok {
		t.Error("Find(missing) succeeded")
	}
}

func TestInches(t *testing.T) {
	width, height := Preset{Width: 100, Height: 50}.Inches()
	if math.Abs(width-39.3701) > 1e-9 || math.Abs(height-19.68505) > 1e-9 {
		t.Errorf("Inches() = %v, %v", width, height)
	}
}

func TestLoad(t *testing.T) {
	catalogue, err := Load("")
	if err != nil || len(catalogue.Presets) == 0 {
		t.Fatalf("Load(\"\") = %v, %v; want the built-in catalogue", catalogue, err)
	}

	path := filepath.Join(t.TempDir(), "wall.jsonc")
	if err := os.WriteFile(path, []byte(`{"presets": [{"id": "x", "name": "X", "width": 3, "height": 4}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	catalogue, err = Load(path)
	if err != nil {
		t.Fatalf("Load(%s): %v", path, err)
	}
	if len(catalogue.Presets) != 1 || catalogue.Presets[0].ID != "x" {
		t.Errorf("loaded %+v", catalogue.Presets)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/gridcast/gridcast/lib/config"
	"github.com/gridcast/gridcast/lib/presets"
)

func TestResolveWall(t *testing.T) {
	catalogue := presets.Builtin()
	tests := []struct {
		name          string
		cfg           config.WallConfig
		preset        string
		width, height float64
		wantWidth     float64
		wantTitle     string
		wantErr       bool
	}{
		{name: "preset flag", preset: "55-169", wantWidth: 121.8 * presets.CentimetresToInches, wantTitle: `55" 16:9`},
		{name: "preset flag beats size flags", preset: "24-169", width: 10, height: 10, wantWidth: 53.1 * presets.CentimetresToInches},
		{name: "size flags", width: 40, height: 20, wantWidth: 40, wantTitle: "40.0 × 20.0 in"},
		{name: "size flags beat config", cfg: config.WallConfig{Preset: "65-169"}, width: 40, height: 20, wantWidth: 40},
		{name: "config preset", cfg: config.WallConfig{Preset: "37-BAR"}, wantWidth: 90.6 * presets.CentimetresToInches},
		{name: "config size", cfg: config.WallConfig{MonitorWidth: 30, MonitorHeight: 10}, wantWidth: 30},
		{name: "unknown preset", preset: "99-inch", wantErr: true},
		{name: "half a size", width: 40, wantErr: true},
		{name: "nothing", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			wall, err := resolveWall(test.cfg, catalogue, test.preset, test.width, test.height)
			if test.wantErr {
				if err == nil {
					t.Errorf("resolveWall = %+v, want error", wall)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveWall: %v", err)
			}
			if math.Abs(wall.width-test.wantWidth) > 1e-9 {
				t.Errorf("width = %v, want %v", wall.width, test.wantWidth)
			}
			if test.wantTitle != "" && wall.title != test.wantTitle {
				t.Errorf("title = %q, want %q", wall.title, test.wantTitle)
			}
		})
	}
}

func TestPrintPresets(t *testing.T) {
	var output bytes.Buffer
	printPresets(&output, presets.Builtin())
	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != len(presets.Builtin().Presets) {
		t.Errorf("printed %d lines for %d presets", len(lines), len(presets.Builtin().Presets))
	}
	if !strings.HasPrefix(lines[0], "24-169") {
		t.Errorf("first line = %q", lines[0])
	}
}

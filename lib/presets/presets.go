// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package presets

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// CentimetresToInches converts catalogue sizes to calibration units.
const CentimetresToInches = 0.393701

// Preset is one monitor model. Width and Height are in centimetres.
type Preset struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Inches returns the preset's size in inches.
func (p Preset) Inches() (width, height float64) {
	return p.Width * CentimetresToInches, p.Height * CentimetresToInches
}

// Catalogue is an ordered list of presets.
type Catalogue struct {
	Presets []Preset `json:"presets"`
}

//go:embed builtin.jsonc
var builtinSource []byte

// Builtin returns the catalogue compiled into the binary.
func Builtin() *Catalogue {
	catalogue, err := Parse(builtinSource)
	if err != nil {
		panic(fmt.Sprintf("presets: built-in catalogue is invalid: %v", err))
	}
	return catalogue
}

// Parse strips JSONC comments and trailing commas from data, then
// decodes and validates the catalogue.
func Parse(data []byte) (*Catalogue, error) {
	stripped := jsonc.ToJSON(data)

	var catalogue Catalogue
	if err := json.Unmarshal(stripped, &catalogue); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	if err := catalogue.Validate(); err != nil {
		return nil, err
	}
	return &catalogue, nil
}

// ReadFile reads and parses a JSONC catalogue from disk.
func ReadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	catalogue, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalogue, nil
}

// Load returns the catalogue at path, or the built-in one when path
// is empty.
func Load(path string) (*Catalogue, error) {
	if path == "" {
		return Builtin(), nil
	}
	return ReadFile(path)
}

// Validate checks that every preset has an ID, a name and a positive
// size, and that IDs are unique.
func (c *Catalogue) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Presets))
	for index, preset := range c.Presets {
		if preset.ID == "" {
			errs = append(errs, fmt.Errorf("presets[%d]: id is required", index))
		} else if seen[strings.ToLower(preset.ID)] {
			errs = append(errs, fmt.Errorf("presets[%d]: duplicate id %q", index, preset.ID))
		}
		seen[strings.ToLower(preset.ID)] = true
		if preset.Name == "" {
			errs = append(errs, fmt.Errorf("presets[%d]: name is required", index))
		}
		if preset.Width <= 0 || preset.Height <= 0 {
			errs = append(errs, fmt.Errorf("presets[%d] (%s): width and height must be positive", index, preset.ID))
		}
	}
	return errors.Join(errs...)
}

// Find returns the preset whose ID or name equals query, ignoring case.
// IDs are matched first.
func (c *Catalogue) Find(query string) (Preset, bool) {
	for _, preset := range c.Presets {
		if strings.EqualFold(preset.ID, query) {
			return preset, true
		}
	}
	for _, preset := range c.Presets {
		if strings.EqualFold(preset.Name, query) {
			return preset, true
		}
	}
	return Preset{}, false
}

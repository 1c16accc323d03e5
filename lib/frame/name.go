// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"regexp"
	"strconv"
	"strings"
)

// SizeCode is the physical size, in inches, behind a named code.
type SizeCode struct {
	Width  float64
	Height float64
}

// sizeCodes maps the fixed display models the wall is built from.
var sizeCodes = map[string]SizeCode{
	"SA": {Width: 12.73, Height: 7.16},
	"SB": {Width: 13.58, Height: 7.64},
	"SC": {Width: 14.81, Height: 8.33},
	"LI": {Width: 11.24, Height: 6.32},
	"WE": {Width: 22.99, Height: 8.62},
	"WS": {Width: 22.99, Height: 5.08},
	"WF": {Width: 17.87, Height: 3.96},
}

var (
	codePattern      = regexp.MustCompile(`^(.+)#([A-Z]+)#?$`)
	dimensionPattern = regexp.MustCompile(`^(.+)#(\d+(?:\.\d+)?)x(\d+(?:\.\d+)?)$`)
)

// LookupSizeCode returns the size behind code.
func LookupSizeCode(code string) (SizeCode, bool) {
	size, ok := sizeCodes[code]
	return size, ok
}

// MatchesConvention reports whether fullName has one of the accepted
// shapes. It does not check that a size code exists: scans count with
// this cheap test and ParseName makes the final decision.
func MatchesConvention(fullName string) bool {
	return codePattern.MatchString(fullName) || dimensionPattern.MatchString(fullName)
}

// ParseName resolves fullName into a metadata-only Descriptor. It
// returns false for names without a delimiter, unknown size codes and
// non-positive dimensions.
func ParseName(fullName string) (Descriptor, bool) {
	if match := codePattern.FindStringSubmatch(fullName); match != nil {
		if size, ok := sizeCodes[match[2]]; ok {
			name := strings.TrimSpace(match[1])
			if name == "" {
				return Descriptor{}, false
			}
			return Descriptor{
				Name:         name,
				WidthUnits:   size.Width,
				HeightUnits:  size.Height,
				OriginalName: fullName,
			}, true
		}
	}

	match := dimensionPattern.FindStringSubmatch(fullName)
	if match == nil {
		return Descriptor{}, false
	}
	name := strings.TrimSpace(match[1])
	width, widthErr := strconv.ParseFloat(match[2], 64)
	height, heightErr := strconv.ParseFloat(match[3], 64)
	if name == "" || widthErr != nil || heightErr != nil || width <= 0 || height <= 0 {
		return Descriptor{}, false
	}
	return Descriptor{
		Name:         name,
		WidthUnits:   width,
		HeightUnits:  height,
		OriginalName: fullName,
	}, true
}

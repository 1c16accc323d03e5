// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
)

// Descriptor is one exportable frame. Payload is empty after a scan
// and holds the raster after an export. Whoever last received a
// Descriptor owns its Payload; senders do not keep a copy.
type Descriptor struct {
	Name         string  `json:"name"`
	WidthUnits   float64 `json:"widthUnits"`
	HeightUnits  float64 `json:"heightUnits"`
	OriginalName string  `json:"originalName"`
	Payload      Bytes   `json:"imageBytes,omitempty"`
}

// Metadata returns d without its payload.
func (d Descriptor) Metadata() Descriptor {
	d.Payload = nil
	return d
}

// Bytes is raster data on a JSON channel. It encodes as base64 and
// decodes from base64, from an array of byte values, or from the
// index-keyed object a browser produces when it stringifies a
// Uint8Array directly.
type Bytes []byte

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}

	switch data[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return fmt.Errorf("frame: image bytes: %w", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("frame: image bytes: %w", err)
		}
		*b = decoded
		return nil

	case '[':
		var values []int
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("frame: image bytes: %w", err)
		}
		decoded := make([]byte, len(values))
		for index, value := range values {
			if value < 0 || value > 255 {
				return fmt.Errorf("frame: image bytes: value %d at index %d out of byte range", value, index)
			}
			decoded[index] = byte(value)
		}
		*b = decoded
		return nil

	case '{':
		var indexed map[string]int
		if err := json.Unmarshal(data, &indexed); err != nil {
			return fmt.Errorf("frame: image bytes: %w", err)
		}
		decoded := make([]byte, len(indexed))
		for key, value := range indexed {
			index, err := strconv.Atoi(key)
			if err != nil || index < 0 || index >= len(indexed) {
				return fmt.Errorf("frame: image bytes: bad index %q", key)
			}
			if value < 0 || value > 255 {
				return fmt.Errorf("frame: image bytes: value %d at index %d out of byte range", value, index)
			}
			decoded[index] = byte(value)
		}
		*b = decoded
		return nil
	}
	return fmt.Errorf("frame: image bytes: unsupported JSON shape starting with %q", data[0])
}

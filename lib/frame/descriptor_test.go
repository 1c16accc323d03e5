// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestBytesDecodesEveryShape(t *testing.T) {
	want := []byte{0x89, 'P', 'N', 'G'}
	tests := []struct {
		name  string
		input string
	}{
		{"base64", `"iVBORw=="`},
		{"array", `[137, 80, 78, 71]`},
		{"indexed object", `{"2": 78, "0": 137, "3": 71, "1": 80}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var decoded Bytes
			if err := json.Unmarshal([]byte(test.input), &decoded); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !bytes.Equal(decoded, want) {
				t.Errorf("decoded = %v, want %v", []byte(decoded), want)
			}
		})
	}
}

func TestBytesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"out of range", `[1, 256]`},
		{"negative", `[-1]`},
		{"sparse object", `{"0": 1, "5": 2}`},
		{"bad base64", `"!!!"`},
		{"number", `42`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var decoded Bytes
			if err := json.Unmarshal([]byte(test.input), &decoded); err == nil {
				t.Errorf("Unmarshal(%s) succeeded with %v", test.input, []byte(decoded))
			}
		})
	}
}

func TestDescriptorJSON(t *testing.T) {
	descriptor := Descriptor{
		Name:         "Lobby",
		WidthUnits:   12.73,
		HeightUnits:  7.16,
		OriginalName: "Lobby#SA#",
		Payload:      Bytes{1, 2, 3},
	}
	data, err := json.Marshal(descriptor)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"imageBytes":"AQID"`) {
		t.Errorf("encoded descriptor %s does not carry base64 imageBytes", data)
	}

	metadata, err := json.Marshal(descriptor.Metadata())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(metadata), "imageBytes") {
		t.Errorf("metadata-only descriptor %s carries imageBytes", metadata)
	}
}

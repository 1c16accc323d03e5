// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned when a message's type tag is missing
	// or not part of the direction being decoded.
	ErrUnknownType = errors.New("protocol: unknown message type")

	// ErrMalformed is returned when a message is not a JSON object or a
	// known variant is missing a required member.
	ErrMalformed = errors.New("protocol: malformed message")
)

// Message is any tagged message.
type Message interface {
	MessageType() string
}

// Encode renders m as a flat JSON object with its "type" member first.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encoding %s: %w", m.MessageType(), err)
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("protocol: encoding %s: body is not a JSON object", m.MessageType())
	}
	tag, err := json.Marshal(m.MessageType())
	if err != nil {
		return nil, fmt.Errorf("protocol: encoding tag: %w", err)
	}

	var buffer bytes.Buffer
	buffer.Grow(len(body) + len(tag) + 10)
	buffer.WriteString(`{"type":`)
	buffer.Write(tag)
	rest := bytes.TrimSpace(body[1:])
	if len(rest) > 0 && rest[0] != '}' {
		buffer.WriteByte(',')
	}
	buffer.Write(rest)
	return buffer.Bytes(), nil
}

// validator is implemented by variants with required members.
type validator interface {
	validate() error
}

type tagOnly struct {
	Type string `json:"type"`
}

// readTag extracts the type tag from data.
func readTag(data []byte) (string, error) {
	var tag tagOnly
	if err := json.Unmarshal(data, &tag); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if tag.Type == "" {
		return "", fmt.Errorf("%w: missing type tag", ErrUnknownType)
	}
	return tag.Type, nil
}

func decodeVariant[T any](data []byte) (T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if check, ok := any(value).(validator); ok {
		if err := check.validate(); err != nil {
			return value, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return value, nil
}

// decoderTable maps tags to variant decoders for one direction.
type decoderTable[M any] map[string]func([]byte) (M, error)

func variant[T any, M any](convert func(T) M) func([]byte) (M, error) {
	return func(data []byte) (M, error) {
		value, err := decodeVariant[T](data)
		if err != nil {
			var zero M
			return zero, err
		}
		return convert(value), nil
	}
}

func (table decoderTable[M]) decode(direction string, data []byte) (M, error) {
	var zero M
	tag, err := readTag(data)
	if err != nil {
		return zero, err
	}
	decode, ok := table[tag]
	if !ok {
		return zero, fmt.Errorf("%w: %q is not a %s message", ErrUnknownType, tag, direction)
	}
	message, err := decode(data)
	if err != nil {
		return zero, fmt.Errorf("decoding %s: %w", tag, err)
	}
	return message, nil
}

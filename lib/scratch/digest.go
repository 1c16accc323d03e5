// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package scratch

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed hash of a frame payload.
type Digest [32]byte

// frameDomainKey separates frame digests from any other BLAKE3 use.
// ASCII "gridcast.scratch.frame", zero-padded.
var frameDomainKey = [32]byte{
	'g', 'r', 'i', 'd', 'c', 'a', 's', 't', '.', 's', 'c', 'r', 'a', 't', 'c', 'h',
	'.', 'f', 'r', 'a', 'm', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashPayload returns the digest of data.
func HashPayload(data []byte) Digest {
	hasher, err := blake3.NewKeyed(frameDomainKey[:])
	if err != nil {
		panic("scratch: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the lowercase hex encoding.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

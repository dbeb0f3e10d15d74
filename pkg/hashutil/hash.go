// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hashutil provides the 128-bit non-cryptographic content digest used
// to give catalog records a cheap, content-addressed identity for duplicate
// detection. The algorithm is XXH3-128 (github.com/zeebo/xxh3), the same
// family used by the original agent's Rust implementation
// (xxhash_rust::xxh3::xxh3_128), rendered as an unsigned decimal string.
package hashutil

import (
	"io"
	"math/big"

	"github.com/zeebo/xxh3"
)

// HashBytes returns the XXH3-128 digest of b, rendered as an unsigned decimal
// string matching the canonical u128 representation (hi<<64 | lo).
func HashBytes(b []byte) string {
	return render(xxh3.Hash128(b))
}

// HashReader streams r through XXH3-128 without buffering the whole content
// in memory twice, returning the digest as an unsigned decimal string.
func HashReader(r io.Reader) (string, error) {
	h := xxh3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return render(h.Sum128()), nil
}

func render(u xxh3.Uint128) string {
	hi := new(big.Int).SetUint64(u.Hi)
	hi.Lsh(hi, 64)
	lo := new(big.Int).SetUint64(u.Lo)
	return hi.Or(hi, lo).String()
}

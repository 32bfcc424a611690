// Copyright 2017 The go-ethereum Authors
// (original work)
// Copyright 2024 The Erigon Authors
// (modifications)
// Copyright 2026 The TON Light Client Authors
// (further modifications)
// This file is part of proofengine.
//
// proofengine is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// proofengine is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with proofengine. If not, see <http://www.gnu.org/licenses/>.

// Package xmath holds small integer helpers: parsing CLI seq_no
// arguments and picking the resolver's zerostate-side midpoint. SafeAdd
// and CeilDiv are also provided; no code in this module calls them, and
// bound updates do not go through SafeAdd.
package xmath

import (
	"fmt"
	"math/bits"
	"strconv"
)

// ParseUint64 parses s as an integer in decimal or hexadecimal syntax.
// Leading zeros are accepted. The empty string parses as zero.
func ParseUint64(s string) (uint64, bool) {
	if s == "" {
		return 0, true
	}
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return v, err == nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

// ParseUint32 is ParseUint64 narrowed to uint32, for seq_no arguments.
func ParseUint32(s string) (uint32, error) {
	v, ok := ParseUint64(s)
	if !ok || v > MaxUint32 {
		return 0, fmt.Errorf("invalid sequence number %q", s)
	}
	return uint32(v), nil
}

const MaxUint32 = 1<<32 - 1

// AbsoluteDifference returns the absolute value of x-y without risking a
// signed overflow when x and y are close to the uint32/uint64 range ends.
func AbsoluteDifference(x, y uint32) uint32 {
	if x > y {
		return x - y
	}
	return y - x
}

// SafeAdd returns x+y and whether the addition overflowed.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum, carryOut := bits.Add64(x, y, 0)
	return sum, carryOut != 0
}

// CeilDiv computes ceil(x/y), returning 0 for a zero divisor rather than
// panicking.
func CeilDiv(x, y int) int {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}

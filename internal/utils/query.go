// Package utils provides small helpers for parsing dashboard query
// parameters. They carry no domain logic.
package utils

import (
	"math"
	"strconv"
	"strings"
)

// AtoiDefault parses s as an integer and returns def when s is empty or not
// a number. Decimal input is truncated toward zero, so "7.9" yields 7.
//
//	utils.AtoiDefault("42", 0)  // 42
//	utils.AtoiDefault("", 10)   // 10
//	utils.AtoiDefault("x", 5)   // 5
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampQuery parses s with AtoiDefault and clamps the result to [lo, hi].
func ClampQuery(s string, def, lo, hi int) int {
	return Clamp(AtoiDefault(s, def), lo, hi)
}

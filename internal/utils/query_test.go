package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{" 42 ", 7, 42},
		{"7.9", 1, 7},
		{"x", 5, 5},
		{"NaN", 3, 3},
		{"1e30", -1, -1},
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClampQuery(t *testing.T) {
	cases := []struct {
		s    string
		want int
	}{
		{"", 7},
		{"0", 1},
		{"-5", 1},
		{"30", 30},
		{"90", 90},
		{"500", 90},
		{"abc", 7},
	}
	for _, tc := range cases {
		if got := ClampQuery(tc.s, 7, 1, 90); got != tc.want {
			t.Fatalf("ClampQuery(%q) = %d; want %d", tc.s, got, tc.want)
		}
	}
}

package security

import "testing"

func TestConstantTimeEquals(t *testing.T) {
	cases := []struct {
		name     string
		provided string
		expected string
		want     bool
	}{
		{name: "equal", provided: "secret-token", expected: "secret-token", want: true},
		{name: "different same length", provided: "secret-token", expected: "secret-tokex", want: false},
		{name: "different length", provided: "short", expected: "a much longer value", want: false},
		{name: "both empty", provided: "", expected: "", want: true},
		{name: "one empty", provided: "", expected: "value", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConstantTimeEquals(tc.provided, tc.expected); got != tc.want {
				t.Fatalf("ConstantTimeEquals(%q, %q) = %v, want %v", tc.provided, tc.expected, got, tc.want)
			}
		})
	}
}

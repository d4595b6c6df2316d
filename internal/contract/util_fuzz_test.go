package contract

import (
	"strings"
	"testing"
)

// FuzzParseBoolString checks that every accepted spelling parses and everything else errors.
func FuzzParseBoolString(f *testing.F) {
	for _, seed := range []string{"yes", "NO", "true", "False", "1", "0", "", "maybe", " yes"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		v, err := ParseBoolString(s)
		switch strings.ToLower(s) {
		case "yes", "true", "1":
			if err != nil || !v {
				t.Fatalf("ParseBoolString(%q) = %v, %v; want true", s, v, err)
			}
		case "no", "false", "0":
			if err != nil || v {
				t.Fatalf("ParseBoolString(%q) = %v, %v; want false", s, v, err)
			}
		default:
			if err == nil {
				t.Fatalf("ParseBoolString(%q) accepted an invalid value", s)
			}
		}
	})
}

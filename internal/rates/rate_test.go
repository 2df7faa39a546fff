package rates

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	valid := map[string]string{
		"100":     "100",
		"2.5":     "2.5",
		"0":       "0",
		"1e3":     "1000",
		"1e18":    "1000000000000000000",
		"0.00001": "0.00001",
	}
	for in, want := range valid {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", in, err)
		}
		if got.String() != want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", in, got, want)
		}
	}

	invalid := []string{
		"", "abc", "-1",
		"1e19", "1e100000000", "1e2000000000",
		"1e-19", "1e-1000000000",
		"1234567890123456789012345678901",
	}
	for _, in := range invalid {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseAmount(%q) error = %v, want ErrInvalidAmount", in, err)
		}
	}
}

package utils

import (
	"errors"
	"testing"
)

func TestGenerateSlug(t *testing.T) {
	tests := map[string]string{
		"Men's T-Shirt!":    "mens-t-shirt",
		"  Summer   Sale  ": "summer-sale",
		"Jeans -- Slim Fit": "jeans-slim-fit",
		"":                  "",
	}
	for in, want := range tests {
		if got := GenerateSlug(in); got != want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	if v, err := ParseAmount(" 12.50 "); err != nil || v != 12.5 {
		t.Errorf("ParseAmount = %v, %v", v, err)
	}
	if v, err := ParseAmount(""); err != nil || v != 0 {
		t.Errorf("ParseAmount(empty) = %v, %v", v, err)
	}
	for _, in := range []string{"abc", "NaN", "Inf", "-Inf", "0x1p3", "1e3", "1.", ".5"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q) = %v, want ErrInvalidAmount", in, err)
		}
	}
}

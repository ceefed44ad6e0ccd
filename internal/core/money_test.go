package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"1.١", 0, false},
		{"5.٥٥", 0, false},
		{"１２", 0, false},
		{"92233720368547757.99", 9223372036854775799, true},
		{"92233720368547757.995", 9223372036854775800, true},
		{"92233720368547758", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("%q expected ErrInvalidInput, got %v", tc.in, err)
			}
		}
	}
}

func TestParseDecimalToCentsTooLarge(t *testing.T) {
	for _, in := range []string{"92233720368547758", "99999999999999999999.5"} {
		if _, err := ParseDecimalToCents(in); !errors.Is(err, ErrAmountTooLarge) {
			t.Errorf("%q: err = %v, want ErrAmountTooLarge", in, err)
		}
	}
}

func TestParseNonNegativeCents(t *testing.T) {
	if got, err := ParseNonNegativeCents("0"); err != nil || got != 0 {
		t.Fatalf("expected 0, got %d (err=%v)", got, err)
	}
	if got, err := ParseNonNegativeCents("1000"); err != nil || got != 100000 {
		t.Fatalf("expected 100000, got %d (err=%v)", got, err)
	}
	if _, err := ParseNonNegativeCents("-5"); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		1234:  "12.34",
		-1205: "-12.05",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1999})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "1999" {
		t.Fatalf("expected bare cents, got %s", b)
	}
	var m Money
	if err := json.Unmarshal([]byte(`"12.00"`), &m); err == nil {
		t.Fatalf("expected error for string money")
	}
}

package core

import "testing"

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
		{"0", 0, true},
		{"0.00", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"12500", 1250000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
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
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{123, "1.23"},
		{150000, "1500.00"},
		{-45000, "-450.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	b, err := Money{Cents: 123456}.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"1234.56"` {
		t.Fatalf("marshal = %s", b)
	}

	var m Money
	if err := m.UnmarshalJSON([]byte(`"1234.56"`)); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if m.Cents != 123456 {
		t.Fatalf("unmarshal string cents = %d", m.Cents)
	}

	if err := m.UnmarshalJSON([]byte(`99.95`)); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if m.Cents != 9995 {
		t.Fatalf("unmarshal number cents = %d", m.Cents)
	}

	// Derived values like average profit can come back negative.
	if err := m.UnmarshalJSON([]byte(`"-450.00"`)); err != nil {
		t.Fatalf("unmarshal negative: %v", err)
	}
	if m.Cents != -45000 {
		t.Fatalf("unmarshal negative cents = %d", m.Cents)
	}
}

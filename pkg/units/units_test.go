package units

import (
	"math/big"
	"testing"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int32
		want     string
		wantErr  bool
	}{
		{"1", 18, "1000000000000000000", false},
		{"0.001", 18, "1000000000000000", false},
		{"1.5", 6, "1500000", false},
		{" 2 ", 9, "2000000000", false},
		{"0.0000001", 6, "", true},
		{"-1", 6, "", true},
		{"abc", 6, "", true},
		{"", 6, "", true},
	}

	for _, tt := range tests {
		got, err := ParseUnits(tt.amount, tt.decimals)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseUnits(%q): expected error", tt.amount)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseUnits(%q): %v", tt.amount, err)
		}
		if got.String() != tt.want {
			t.Fatalf("ParseUnits(%q) = %s, want %s", tt.amount, got, tt.want)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	if got := FormatUnits(big.NewInt(1500000), 6); got != "1.5" {
		t.Fatalf("FormatUnits = %s", got)
	}
	if got := FormatUnits(nil, 6); got != "0" {
		t.Fatalf("FormatUnits(nil) = %s", got)
	}
}

package domain

import (
	"errors"
	"testing"
)

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"already normal", "AAPL", "AAPL", false},
		{"lowercase", "msft", "MSFT", false},
		{"padded", "  tsla\t", "TSLA", false},
		{"class share", "brk.b", "BRK.B", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateSymbol(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSymbol) {
					t.Errorf("ValidateSymbol(%q) error = %v, want ErrInvalidSymbol", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateSymbol(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateSymbol(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRecommendationSectors_WellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range RecommendationSectors {
		if seen[s.Name] {
			t.Errorf("duplicate sector %q", s.Name)
		}
		seen[s.Name] = true
		if len(s.Symbols) == 0 {
			t.Errorf("sector %q has no symbols", s.Name)
		}
		for _, sym := range s.Symbols {
			if NormalizeSymbol(sym) != sym {
				t.Errorf("sector %q symbol %q is not normalized", s.Name, sym)
			}
		}
	}
}

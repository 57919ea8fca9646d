package quantity_test

import (
	"testing"

	"github.com/shopease/orderbot/internal/quantity"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		input string
		want  int
		found bool
	}{
		// Digits win.
		{"3", 3, true},
		{"  12  ", 12, true},
		{"I want 5 of them", 5, true},
		{"give me 2 please", 2, true},
		{"0", 0, true},

		// Digits beat words when both appear.
		{"two or 3", 3, true},

		// Single number words.
		{"three", 3, true},
		{"Three", 3, true},
		{"zero", 0, true},
		{"ten", 10, true},
		{"nineteen", 19, true},
		{"forty", 40, true},
		{"I would like seven", 7, true},

		// Compound tens, space and hyphen.
		{"twenty one", 21, true},
		{"twenty-one", 21, true},
		{"I want twenty one apples", 21, true},
		{"ninety nine", 99, true},

		// Hundreds.
		{"one hundred", 100, true},
		{"a hundred", 100, true},
		{"one hundred five", 105, true},
		{"two hundred twenty", 220, true},

		// Longer phrase preferred over its pieces.
		{"make it twenty one, not one", 21, true},

		// Punctuation around words.
		{"five!", 5, true},
		{"twenty-one, please", 21, true},

		// No number present.
		{"", 0, false},
		{"hello there", 0, false},
		{"a lot", 0, false},
		{"hundred", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, found := quantity.Extract(tt.input)
			if found != tt.found {
				t.Fatalf("Extract(%q) found = %v, want %v", tt.input, found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("Extract(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtract_NeverErrors(t *testing.T) {
	// Garbage inputs must come back as "no number", not panic.
	inputs := []string{"-", "--", "?!?", "   ", "\n\t", "hundreds of them"}
	for _, in := range inputs {
		if _, found := quantity.Extract(in); found {
			t.Errorf("Extract(%q) unexpectedly found a number", in)
		}
	}
}

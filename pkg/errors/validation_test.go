package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateCount(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		limit   int
		wantErr bool
	}{
		{"zero", 0, 10, false},
		{"at limit", 10, 10, false},
		{"typical", 820, 200000, false},
		{"negative", -1, 10, true},
		{"over limit", 11, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCount("ornaments", tt.n, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCount(%d, %d) error = %v, wantErr %v", tt.n, tt.limit, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCount) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidCount)
			}
		})
	}
}

func TestValidateUnitAndRate(t *testing.T) {
	unit := []struct {
		v       float64
		wantErr bool
	}{
		{0, false}, {0.8, false}, {1, false},
		{-0.1, true}, {1.1, true}, {math.NaN(), true}, {math.Inf(1), true},
	}
	for _, tt := range unit {
		if err := ValidateUnit("threshold", tt.v); (err != nil) != tt.wantErr {
			t.Errorf("ValidateUnit(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
		}
	}

	rate := []struct {
		v       float64
		wantErr bool
	}{
		{0.05, false}, {1, false},
		{0, true}, {-0.5, true}, {1.5, true}, {math.NaN(), true},
	}
	for _, tt := range rate {
		if err := ValidateRate("alpha", tt.v); (err != nil) != tt.wantErr {
			t.Errorf("ValidateRate(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
		}
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "wave", false},
		{"with dash", "open-close", false},
		{"with dot", "take.2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"leading dash", "-wave", true},
		{"slash", "a/b", true},
		{"space", "a b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/frame.svg", false},
		{"absolute", "/tmp/frame.png", false},
		{"dots in name", "frame..svg", false},

		{"empty", "", true},
		{"traversal", "out/../../etc/passwd", true},
		{"null byte", "frame\x00.svg", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"redis", "redis://localhost:6379/0", false},
		{"rediss", "rediss://cache.internal:6380", false},

		{"empty", "", true},
		{"http", "http://localhost:6379", true},
		{"bare host", "localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input, "redis", "rediss")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

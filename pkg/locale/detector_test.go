package locale

import "testing"

func TestInferTimezoneFromPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"israeli number with plus", "+972501234567", "Asia/Jerusalem"},
		{"israeli number without plus", "972501234567", "Asia/Jerusalem"},
		{"us number with plus", "+12125551234", "America/New_York"},
		{"uk number with plus", "+442071234567", "Europe/London"},
		{"leading whitespace", "  +972501234567", "Asia/Jerusalem"},
		{"unknown prefix", "+49301234567", DefaultTimezone},
		{"empty phone", "", DefaultTimezone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferTimezoneFromPhone(tt.phone); got != tt.want {
				t.Errorf("InferTimezoneFromPhone(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}

func TestInferCountryFromPhone(t *testing.T) {
	country := InferCountryFromPhone("+972501234567")
	if country == nil {
		t.Fatal("expected a country for an israeli number")
	}
	if country.Code != "IL" {
		t.Errorf("Code = %q, want IL", country.Code)
	}

	if got := InferCountryFromPhone("+49301234567"); got != nil {
		t.Errorf("expected nil for an unsupported prefix, got %v", got)
	}
}

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		tz   string
		want string
	}{
		{"Asia/Jerusalem", "IL"},
		{"asia/jerusalem", "IL"},
		{"America/New_York", "US"},
		{"Europe/London", "GB"},
		{"Pacific/Auckland", "US"}, // Unknown zones fall back to US
	}

	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			if got := DetectRegion(tt.tz); got != tt.want {
				t.Errorf("DetectRegion(%q) = %q, want %q", tt.tz, got, tt.want)
			}
		})
	}
}

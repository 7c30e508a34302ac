package patterns

import "testing"

func TestEmailPattern(t *testing.T) {
	p := Email()

	matches := p.Regexp.FindAllString("Contact john@example.com for info", -1)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0] != "john@example.com" {
		t.Errorf("matched %q", matches[0])
	}

	if !p.Valid("john@example.com") {
		t.Error("plain address rejected")
	}
	if p.Valid("john..smith@example.com") {
		t.Error("consecutive dots in local part accepted")
	}
}

func TestPhonePattern(t *testing.T) {
	p := Phone()

	matches := p.Regexp.FindAllString("Call 07700 900123 or +44 20 7123 4567", -1)
	if len(matches) == 0 {
		t.Fatal("no phone matches found")
	}
	if !p.Valid("07700 900123") {
		t.Error("UK mobile rejected")
	}
	if p.Valid("123") {
		t.Error("too-short digit run accepted")
	}

	t.Run("Scoring", func(t *testing.T) {
		if got := p.ConfidenceFor("+44 20 7123 4567"); got != 0.9 {
			t.Errorf("country-code score = %v, want 0.9", got)
		}
		if got := p.ConfidenceFor("020 7123 4567"); got != 0.8 {
			t.Errorf("separator score = %v, want 0.8", got)
		}
		if got := p.ConfidenceFor("07700900123"); got != 0.9 {
			t.Errorf("UK mobile score = %v, want 0.9", got)
		}
		if got := p.ConfidenceFor("02071234567"); got != 0.85 {
			t.Errorf("UK landline score = %v, want 0.85", got)
		}
	})
}

func TestCreditCardPattern(t *testing.T) {
	p := CreditCard()

	matches := p.Regexp.FindAllString("Card: 4532 0151 1283 0366", -1)
	if len(matches) == 0 {
		t.Fatal("no card matches found")
	}
	if !p.Valid("4532015112830366") {
		t.Error("Luhn-passing card rejected")
	}
	if p.Valid("1234 5678 9012 3456") {
		t.Error("Luhn-failing card accepted")
	}

	// The scorer keeps a low-confidence branch for checksum failures even
	// though detection gating filters those matches first.
	if got := p.ConfidenceFor("1234567890123456"); got != 0.3 {
		t.Errorf("failed-checksum score = %v, want 0.3", got)
	}
	if got := p.ConfidenceFor("4532015112830366"); got != 0.95 {
		t.Errorf("passing-checksum score = %v, want 0.95", got)
	}
}

func TestUKPostcodePattern(t *testing.T) {
	p := UKPostcode()
	matches := p.Regexp.FindAllString("Address: 10 Downing St, London SW1A 2AA", -1)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(matches), matches)
	}
	if matches[0] != "SW1A 2AA" {
		t.Errorf("matched %q", matches[0])
	}
}

func TestNHSNumberPattern(t *testing.T) {
	p := NHSNumber()
	matches := p.Regexp.FindAllString("NHS: 401 023 2161", -1)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if !p.Valid("401 023 2161") {
		t.Error("valid NHS number rejected")
	}
	if got := p.ConfidenceFor("401 023 2161"); got != 0.98 {
		t.Errorf("validated score = %v, want 0.98", got)
	}
	if got := p.ConfidenceFor("123 456 7891"); got != 0.3 {
		t.Errorf("failed-checksum score = %v, want 0.3", got)
	}
}

func TestNINumberPattern(t *testing.T) {
	p := NINumber()
	matches := p.Regexp.FindAllString("NI: AB123456C", -1)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if !p.Valid("AB123456C") {
		t.Error("valid NI number rejected")
	}
	// Prefix exclusions are enforced by the validator, not the regex.
	if p.Valid("GB123456C") {
		t.Error("prohibited prefix accepted")
	}
}

func TestIBANPattern(t *testing.T) {
	p := IBAN()
	matches := p.Regexp.FindAllString("IBAN: GB82 WEST 1234 5698 7654 32", -1)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(matches), matches)
	}
	if !p.Valid("GB82WEST12345698765432") {
		t.Error("valid IBAN rejected")
	}
}

func TestForRegion(t *testing.T) {
	cases := map[string]struct {
		region Region
		count  int
	}{
		"UK":     {RegionUK, 7},
		"EU":     {RegionEU, 4},
		"Common": {RegionCommon, 3},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := len(ForRegion(tc.region)); got != tc.count {
				t.Errorf("ForRegion(%s) returned %d patterns, want %d", tc.region, got, tc.count)
			}
		})
	}

	t.Run("UnknownFallsBack", func(t *testing.T) {
		got := ForRegion("MARS")
		if len(got) != 3 {
			t.Fatalf("unknown region returned %d patterns, want conservative 3", len(got))
		}
	})

	t.Run("LowercaseRegion", func(t *testing.T) {
		if got := len(ForRegion("uk")); got != 7 {
			t.Errorf("lowercase region returned %d patterns, want 7", got)
		}
	})
}

package validate

import "testing"

func TestLuhn(t *testing.T) {
	t.Run("ValidCards", func(t *testing.T) {
		for _, s := range []string{
			"4532015112830366",
			"4916338506082832",
			"4556 7375 8689 9855",
		} {
			if !Luhn(s) {
				t.Errorf("Luhn(%q) = false, want true", s)
			}
		}
	})

	t.Run("InvalidCards", func(t *testing.T) {
		for _, s := range []string{
			"1234567890123456",
			"1111111111111111",
		} {
			if Luhn(s) {
				t.Errorf("Luhn(%q) = true, want false", s)
			}
		}
	})

	t.Run("LengthBounds", func(t *testing.T) {
		if Luhn("123") {
			t.Error("13-digit minimum not enforced")
		}
		if Luhn("12345678901234567890") {
			t.Error("19-digit maximum not enforced")
		}
	})
}

func TestNHSNumber(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, s := range []string{
			"401 023 2161",
			"9434765080",
			"567-890-1230",
		} {
			if !NHSNumber(s) {
				t.Errorf("NHSNumber(%q) = false, want true", s)
			}
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := map[string]string{
			"123 456 7891": "bad checksum",
			"000 000 0000": "leading zero",
			"12345":        "too short",
			"1234567891":   "bad checksum unformatted",
		}
		for s, why := range cases {
			if NHSNumber(s) {
				t.Errorf("NHSNumber(%q) = true, want false (%s)", s, why)
			}
		}
	})
}

func TestIBAN(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, s := range []string{
			"GB82WEST12345698765432",
			"GB82 WEST 1234 5698 7654 32",
			"DE89370400440532013000",
		} {
			if !IBAN(s) {
				t.Errorf("IBAN(%q) = false, want true", s)
			}
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, s := range []string{
			"GB82WEST12345698765433", // final digit changed
			"XX00INVALID",
			"TOOSHORT",
			"1282WEST12345698765432", // country code must be letters
		} {
			if IBAN(s) {
				t.Errorf("IBAN(%q) = true, want false", s)
			}
		}
	})
}

func TestNINumber(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, s := range []string{
			"AB123456C",
			"AB 12 34 56 C",
			"AB-12-34-56-C",
			"ab123456d",
		} {
			if !NINumber(s) {
				t.Errorf("NINumber(%q) = false, want true", s)
			}
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := map[string]string{
			"BG123456C": "prohibited prefix",
			"GB123456C": "prohibited prefix",
			"AB123456E": "suffix past D",
			"DA123456C": "D not allowed first",
			"AD123456C": "D not allowed second",
			"AB12345C":  "too few digits",
		}
		for s, why := range cases {
			if NINumber(s) {
				t.Errorf("NINumber(%q) = true, want false (%s)", s, why)
			}
		}
	})
}

func TestUKPostcode(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, s := range []string{
			"SW1A 2AA",
			"EC1A 1BB",
			"M1 1AE",
			"B33 8TH",
			"GIR 0AA",
			"sw1a 2aa",
			"SW1A2AA",
		} {
			if !UKPostcode(s) {
				t.Errorf("UKPostcode(%q) = false, want true", s)
			}
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, s := range []string{
			"12345",
			"INVALID",
			"A 1AA",
			"SW1A 2A",
		} {
			if UKPostcode(s) {
				t.Errorf("UKPostcode(%q) = true, want false", s)
			}
		}
	})
}

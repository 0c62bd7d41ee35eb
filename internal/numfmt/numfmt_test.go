package numfmt

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmountEuropean(t *testing.T) {
	cases := map[string]string{
		"24.214,44":  "24214.44",
		"3.000,5":    "3000.5",
		"1.234,5678": "1234.5678",
		"950,75":     "950.75",
	}
	for in, want := range cases {
		d, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", in, err)
		}
		if d.String() != want {
			t.Errorf("ParseAmount(%q) = %s, want %s", in, d, want)
		}
	}
}

func TestParseAmountIdempotent(t *testing.T) {
	d, err := ParseAmount("24214.44")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "24214.44" {
		t.Errorf("ParseAmount normalized input = %s, want 24214.44", d)
	}
}

func TestParseAmountCurrencySuffix(t *testing.T) {
	d, err := ParseAmount("1.500,00 €")
	if err != nil {
		t.Fatal(err)
	}
	if !d.Equal(dec(t, "1500.00")) {
		t.Errorf("ParseAmount with euro sign = %s, want 1500.00", d)
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "12,34,56"} {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q): expected error", in)
		}
	}
}

func TestParseHours(t *testing.T) {
	cases := map[string]int{
		"1.708":       1708,
		"1.708 h":     1708,
		"1.760 horas": 1760,
		"1760":        1760,
		"1760,00":     1760,
		"40":          40,
	}
	for in, want := range cases {
		n, err := ParseHours(in)
		if err != nil {
			t.Fatalf("ParseHours(%q): %v", in, err)
		}
		if n != want {
			t.Errorf("ParseHours(%q) = %d, want %d", in, n, want)
		}
	}
}

func TestParseDays(t *testing.T) {
	if n, err := ParseDays("30"); err != nil || n != 30 {
		t.Errorf("ParseDays(30) = %d, %v", n, err)
	}
	if n, err := ParseDays("0"); err != nil || n != 0 {
		t.Errorf("ParseDays(0) = %d, %v", n, err)
	}
	for _, in := range []string{"030", "-5", "", "12d"} {
		if _, err := ParseDays(in); err == nil {
			t.Errorf("ParseDays(%q): expected error", in)
		}
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return v
}

package utils

import "testing"

func TestDetermineLangCode(t *testing.T) {
	cases := []struct {
		explicit, locale, want string
	}{
		{"FR", "en_US.UTF-8", "fr"},
		{"", "ar_EG.UTF-8", "ar"},
		{"", "es-MX", "es"},
		{"de", "C.UTF-8", "en"},
		{"", "", "en"},
		{"zh", "fr_FR@euro", "fr"},
	}
	for _, c := range cases {
		if got := DetermineLangCode(c.explicit, c.locale); got != c.want {
			t.Fatalf("DetermineLangCode(%q, %q) = %s, want %s", c.explicit, c.locale, got, c.want)
		}
	}
}

func TestIsSupportedLang(t *testing.T) {
	if !IsSupportedLang("Es") || IsSupportedLang("de") || IsSupportedLang("") {
		t.Fatalf("unexpected support table")
	}
}

func TestDetermineLocale_ExplicitWins(t *testing.T) {
	got := DetermineLocale("fr-CA", "en-US,en;q=0.9,es;q=0.8", SupportedLangs, "en")
	if got != "fr" {
		t.Fatalf("want fr, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguagePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "es;q=0.5,ar;q=0.9", SupportedLangs, "en")
	if got != "ar" {
		t.Fatalf("want ar, got %s", got)
	}
}

func TestDetermineLocale_ZeroQIsIgnored(t *testing.T) {
	got := DetermineLocale("", "fr;q=0,es;q=0.1", SupportedLangs, "en")
	if got != "es" {
		t.Fatalf("want es, got %s", got)
	}
}

func TestDetermineLocale_DefaultFallback(t *testing.T) {
	got := DetermineLocale("", "de-DE,zh;q=0.9", SupportedLangs, "en")
	if got != "en" {
		t.Fatalf("want en fallback, got %s", got)
	}
}

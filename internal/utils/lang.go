package utils

import (
	"sort"
	"strconv"
	"strings"
)

// SupportedLangs are the language codes the backend accepts for lang_code
// and target_lang.
var SupportedLangs = []string{"en", "fr", "ar", "es"}

const DefaultLang = "en"

// IsSupportedLang reports whether code (case-insensitive) is one of SupportedLangs.
func IsSupportedLang(code string) bool {
	_, ok := matchLang(code, SupportedLangs)
	return ok
}

// matchLang normalizes a tag like "fr-CA", "fr_FR.UTF-8" or "FR" to its
// base language and returns it when supported.
func matchLang(tag string, supported []string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(l, ".@"); i >= 0 {
		l = l[:i]
	}
	if l == "" {
		return "", false
	}
	for _, s := range supported {
		if l == strings.ToLower(s) {
			return l, true
		}
	}
	if i := strings.IndexAny(l, "-_"); i > 0 {
		base := l[:i]
		for _, s := range supported {
			if base == strings.ToLower(s) {
				return base, true
			}
		}
	}
	return "", false
}

// DetermineLangCode picks the language for tool requests: an explicit
// choice wins, then a POSIX locale such as LANG=fr_FR.UTF-8, then English.
func DetermineLangCode(explicit, posixLocale string) string {
	if v, ok := matchLang(explicit, SupportedLangs); ok {
		return v
	}
	if v, ok := matchLang(posixLocale, SupportedLangs); ok {
		return v
	}
	return DefaultLang
}

// DetermineLocale resolves a language from an explicit value, then an
// Accept-Language header weighted by q, then def, then the first supported.
func DetermineLocale(explicit, acceptLang string, supported []string, def string) string {
	if v, ok := matchLang(explicit, supported); ok {
		return v
	}

	type cand struct {
		lang string
		q    float64
	}
	var cands []cand
	for _, part := range strings.Split(acceptLang, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		lang, q := p, 1.0
		if semi := strings.Index(p, ";"); semi >= 0 {
			lang = strings.TrimSpace(p[:semi])
			if k, v, ok := strings.Cut(p[semi+1:], "="); ok && strings.TrimSpace(k) == "q" {
				if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
					q = f
				}
			}
		}
		if q <= 0 {
			continue
		}
		if l, ok := matchLang(lang, supported); ok {
			cands = append(cands, cand{lang: l, q: q})
		}
	}
	if len(cands) > 0 {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].q > cands[j].q })
		return cands[0].lang
	}
	if v, ok := matchLang(def, supported); ok {
		return v
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return DefaultLang
}

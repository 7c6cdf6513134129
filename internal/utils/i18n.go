package utils

// Fixed phrases the stand-in backend stamps onto its canned outputs so a
// reader can tell which language was requested.
var translations = map[string]map[string]string{
	"en": {
		"lang.name":        "English",
		"summary.prefix":   "Summary",
		"translation.note": "Translated to English",
		"quiz.which":       "Which statement about %s is true?",
	},
	"fr": {
		"lang.name":        "Français",
		"summary.prefix":   "Résumé",
		"translation.note": "Traduit en français",
		"quiz.which":       "Quelle affirmation sur %s est vraie ?",
	},
	"ar": {
		"lang.name":        "العربية",
		"summary.prefix":   "ملخص",
		"translation.note": "مترجم إلى العربية",
		"quiz.which":       "أي عبارة عن %s صحيحة؟",
	},
	"es": {
		"lang.name":        "Español",
		"summary.prefix":   "Resumen",
		"translation.note": "Traducido al español",
		"quiz.which":       "¿Qué afirmación sobre %s es verdadera?",
	},
}

// T returns the phrase for key in lang; falls back to English, then to key.
func T(lang, key string) string {
	if m, ok := translations[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}

package middleware

import (
	"context"
	"net/http"

	"github.com/wikismart/wikismart/internal/utils"
)

type localeKey struct{}

// LocaleMiddleware picks the language of the devserver's canned output:
// lang_code from the query, then Accept-Language, then English. The choice
// is echoed as Content-Language.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := utils.DetermineLocale(r.URL.Query().Get("lang_code"), r.Header.Get("Accept-Language"), utils.SupportedLangs, utils.DefaultLang)
		w.Header().Set("Content-Language", lang)
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), lang)))
	})
}

func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, localeKey{}, lang)
}

// LocaleFromContext returns the language chosen by LocaleMiddleware, or
// utils.DefaultLang outside it.
func LocaleFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(localeKey{}).(string); ok && lang != "" {
		return lang
	}
	return utils.DefaultLang
}

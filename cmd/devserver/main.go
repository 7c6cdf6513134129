package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/wikismart/wikismart/internal/config"
	"github.com/wikismart/wikismart/internal/devserver"
	"github.com/wikismart/wikismart/internal/middleware"
	"github.com/wikismart/wikismart/internal/utils"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	commit := os.Getenv("WIKISMART_COMMIT")

	rt := devserver.NewRouter(middleware.NewAuth(cfg.JWTSecret))
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		name := strings.SplitN(cfg.AdminEmail, "@", 2)[0]
		if err := rt.SeedUser(name, cfg.AdminEmail, cfg.AdminPassword, true); err != nil {
			log.Fatalf("seed admin %s: %v", cfg.AdminEmail, err)
		}
		log.Printf("seeded admin account %s", cfg.AdminEmail)
	}

	api := rt.Handler()
	mux := http.NewServeMux()
	mux.Handle("/auth/", api)
	mux.Handle("/ai/", api)
	mux.Handle("/upload/", api)
	mux.Handle("/", middleware.LocaleMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		locale := middleware.LocaleFromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "WikiSmart stand-in API is running",
			"locale":  locale,
			"lang":    utils.T(locale, "lang.name"),
			"commit":  commit,
		})
	})))

	log.Printf("WikiSmart devserver listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

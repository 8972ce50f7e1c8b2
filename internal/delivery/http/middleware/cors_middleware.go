package middleware

import (
	"net/http"
	"strings"

	"storefront-console/config"

	"github.com/rs/cors"
)

// NewCORSMiddleware allows the configured origins (comma separated, "*" for any)
// with credentials, so the session cookie reaches the server.
func NewCORSMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	var origins []string
	for _, o := range strings.Split(cfg.AllowedOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return c.Handler
}

package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

func CORS(allowedOrigins []string, log zerolog.Logger) func(http.Handler) http.Handler {
	// Empty allows everything; local runs only.
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	log.Info().Strs("origins", allowedOrigins).Msg("cors configured")

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendSheets    = "sheets"
	BackendMemory    = "memory"
)

type Config struct {
	ProjectID             string
	Port                  string
	AllowedOrigins        []string
	ServiceAccountJSON    string
	StoreBackend          string
	SheetID               string
	GoogleCredentialsJSON string
	QRNamespace           string
	QRBucket              string
	RequireAuth           bool
	PushTopic             string
	LogLevel              string
	LogFormat             string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	allowed := []string{}
	for _, o := range strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		ProjectID:             projectID,
		Port:                  getenv("PORT", "8080"),
		AllowedOrigins:        allowed,
		ServiceAccountJSON:    getenv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		StoreBackend:          strings.ToLower(getenv("STORE_BACKEND", BackendFirestore)),
		SheetID:               getenv("GOOGLE_SHEET_ID", ""),
		GoogleCredentialsJSON: getenv("GOOGLE_CREDENTIALS", ""),
		QRNamespace:           getenv("QR_NAMESPACE", "swimfit"),
		QRBucket:              getenv("QR_BUCKET", ""),
		RequireAuth:           parseBool(getenv("REQUIRE_AUTH", "false")),
		PushTopic:             getenv("PUSH_TOPIC", ""),
		LogLevel:              getenv("LOG_LEVEL", "info"),
		LogFormat:             getenv("LOG_FORMAT", "json"),
	}
}

// Validate reports configuration that cannot produce a working server.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("missing FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT")
		}
	case BackendSheets:
		if c.SheetID == "" {
			return fmt.Errorf("GOOGLE_SHEET_ID is required for the sheets backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want firestore, sheets or memory)", c.StoreBackend)
	}
	if strings.TrimSpace(c.QRNamespace) == "" {
		return fmt.Errorf("QR_NAMESPACE must not be empty")
	}
	return nil
}

// NeedsFirebase reports whether any configured feature talks to Firebase.
func (c Config) NeedsFirebase() bool {
	return c.StoreBackend == BackendFirestore || c.RequireAuth || c.PushTopic != "" || c.QRBucket != ""
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

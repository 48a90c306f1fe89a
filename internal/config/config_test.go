package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "PORT", "ALLOWED_ORIGINS",
		"STORE_BACKEND", "GOOGLE_SHEET_ID", "QR_NAMESPACE", "REQUIRE_AUTH",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, BackendFirestore, cfg.StoreBackend)
	assert.Equal(t, "swimfit", cfg.QRNamespace)
	assert.False(t, cfg.RequireAuth)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "pool-prod")
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("STORE_BACKEND", "Sheets")
	t.Setenv("GOOGLE_SHEET_ID", "sheet-1")
	t.Setenv("REQUIRE_AUTH", "yes")

	cfg := Load()

	assert.Equal(t, "pool-prod", cfg.ProjectID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, BackendSheets, cfg.StoreBackend)
	assert.True(t, cfg.RequireAuth)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{StoreBackend: BackendMemory, QRNamespace: "swimfit"}, false},
		{"firestore without project", Config{StoreBackend: BackendFirestore, QRNamespace: "swimfit"}, true},
		{"sheets without id", Config{StoreBackend: BackendSheets, QRNamespace: "swimfit"}, true},
		{"unknown backend", Config{StoreBackend: "mongo", QRNamespace: "swimfit"}, true},
		{"empty namespace", Config{StoreBackend: BackendMemory, QRNamespace: " "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"swimfit/backend/internal/config"
)

// Clients bundles the Firebase and GCP clients the server may need. Fields
// for features that are switched off stay nil.
type Clients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
	Storage   *storage.Client
	Messaging *messaging.Client

	ProjectID string
}

// Options returns the credential options shared by every Google client.
// Without FIREBASE_SERVICE_ACCOUNT_JSON, Application Default Credentials
// apply.
func Options(cfg config.Config) []option.ClientOption {
	if cfg.ServiceAccountJSON == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))}
}

func NewClients(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Clients, error) {
	opts := Options(cfg)

	appCfg := &firebase.Config{}
	if cfg.ProjectID != "" {
		appCfg.ProjectID = cfg.ProjectID
	}
	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	c := &Clients{App: app, ProjectID: cfg.ProjectID}

	if cfg.RequireAuth {
		if c.Auth, err = app.Auth(ctx); err != nil {
			return nil, fmt.Errorf("firebase auth: %w", err)
		}
	}
	if cfg.StoreBackend == config.BackendFirestore {
		if c.Firestore, err = app.Firestore(ctx); err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
	}
	if cfg.QRBucket != "" {
		if c.Storage, err = storage.NewClient(ctx, opts...); err != nil {
			c.Close()
			return nil, fmt.Errorf("storage: %w", err)
		}
	}
	if cfg.PushTopic != "" {
		// Push alerts are optional; a failure only disables them.
		if c.Messaging, err = app.Messaging(ctx); err != nil {
			log.Warn().Err(err).Msg("messaging unavailable, usage alerts disabled")
			c.Messaging = nil
		}
	}
	return c, nil
}

// Close releases the clients that hold connections.
func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Firestore != nil {
		_ = c.Firestore.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

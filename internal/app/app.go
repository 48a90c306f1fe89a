// Package app wires configuration into a ready set of services. Both
// binaries build on it.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"swimfit/backend/internal/config"
	"swimfit/backend/internal/domain/attendance"
	"swimfit/backend/internal/domain/client"
	"swimfit/backend/internal/domain/notifications"
	"swimfit/backend/internal/domain/retention"
	"swimfit/backend/internal/domain/session"
	"swimfit/backend/internal/domain/stats"
	"swimfit/backend/internal/firebase"
	"swimfit/backend/internal/kv"
	kvfirestore "swimfit/backend/internal/kv/firestore"
	"swimfit/backend/internal/kv/sheets"
	"swimfit/backend/internal/qrcode"
)

type App struct {
	Cfg      config.Config
	Firebase *firebase.Clients
	Store    kv.Store

	Clients       *client.Service
	Sessions      *session.Service
	Attendance    *attendance.Service
	Notifications *notifications.Service
	Stats         *stats.Service
	Retention     *retention.Service
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Cfg: cfg}

	if cfg.NeedsFirebase() {
		fb, err := firebase.NewClients(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		a.Firebase = fb
	}

	store, err := OpenStore(ctx, cfg, a.Firebase)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store
	log.Info().Str("backend", cfg.StoreBackend).Msg("store ready")

	var sink qrcode.Sink
	if a.Firebase != nil && a.Firebase.Storage != nil {
		sink = qrcode.NewBucketSink(a.Firebase.Storage, cfg.QRBucket)
	}
	codec := qrcode.NewCodec(cfg.QRNamespace)

	clientLog := component(log, "clients")
	a.Clients = client.NewService(client.NewRepo(store, clientLog), qrcode.NewGenerator(codec, sink), clientLog)
	sessionLog := component(log, "sessions")
	a.Sessions = session.NewService(session.NewRepo(store, sessionLog), sessionLog)
	a.Notifications = notifications.NewService(a.Clients, component(log, "notifications"))
	if a.Firebase != nil && a.Firebase.Messaging != nil {
		a.Notifications.SetPusher(a.Firebase.Messaging, cfg.PushTopic)
	}

	attLog := component(log, "attendance")
	a.Attendance = attendance.NewService(attendance.NewRepo(store, attLog), a.Clients, a.Sessions, attendance.NewScanResolver(codec), attLog)
	a.Attendance.SetNotifier(a.Notifications)

	a.Stats = stats.NewService(a.Clients, a.Sessions, a.Attendance)
	a.Retention = retention.NewService(a.Clients, a.Attendance)
	return a, nil
}

// OpenStore builds the configured backend. fb may be nil unless the backend
// is firestore.
func OpenStore(ctx context.Context, cfg config.Config, fb *firebase.Clients) (kv.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		if fb == nil || fb.Firestore == nil {
			return nil, fmt.Errorf("firestore backend needs a firestore client")
		}
		return kvfirestore.New(fb.Firestore), nil
	case config.BackendSheets:
		creds := cfg.GoogleCredentialsJSON
		if creds == "" {
			creds = cfg.ServiceAccountJSON
		}
		api, err := sheets.NewAPI(ctx, cfg.SheetID, creds)
		if err != nil {
			return nil, err
		}
		return sheets.New(api), nil
	case config.BackendMemory:
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// InitCollections prepares every collection the services use.
func (a *App) InitCollections(ctx context.Context) error {
	if err := a.Clients.Init(ctx); err != nil {
		return err
	}
	if err := a.Sessions.Init(ctx); err != nil {
		return err
	}
	return a.Attendance.Init(ctx)
}

func (a *App) Close() {
	a.Firebase.Close()
}

func component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

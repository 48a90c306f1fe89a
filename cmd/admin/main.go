// Command admin runs one-off maintenance against the configured store.
//
//	admin -task=init
//	admin -task=cleanup-notes
//	admin -task=backfill-qr
//	admin -task=reconcile
//	admin -task=seed
//	admin -task=retention
//	admin -task=set-staff -uid=<firebase uid>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"swimfit/backend/internal/app"
	"swimfit/backend/internal/config"
	"swimfit/backend/internal/domain/retention"
	"swimfit/backend/internal/logging"
	"swimfit/backend/internal/middleware"
	"swimfit/backend/internal/seed"
)

func main() {
	task := flag.String("task", "", "init | cleanup-notes | backfill-qr | reconcile | seed | retention | set-staff")
	uid := flag.String("uid", "", "target firebase uid (set-staff)")
	flag.Parse()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx := context.Background()

	if *task == "set-staff" {
		if *uid == "" {
			log.Fatal().Msg("uid is required: -uid=xxxxx")
		}
		// Claims live in Firebase Auth, independent of the store backend.
		cfg.RequireAuth = true
		cfg.StoreBackend = config.BackendMemory
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	var out any
	switch *task {
	case "init":
		err = a.InitCollections(ctx)
		out = "collections initialized"
	case "cleanup-notes":
		var n int
		n, err = a.Clients.CleanupNotes(ctx)
		out = map[string]int{"updatedCount": n}
	case "backfill-qr":
		out, err = a.Clients.BackfillQRCodes(ctx)
	case "reconcile":
		out, err = a.Attendance.ReconcileUsage(ctx)
	case "seed":
		out, err = seed.Run(ctx, a.Clients, a.Sessions, a.Attendance, time.Now())
	case "retention":
		var sum *retention.Summary
		if sum, err = a.Retention.Alerts(ctx, retention.DefaultSettings()); err == nil {
			for _, al := range sum.Alerts {
				log.Info().Str("clientId", al.ClientID).Str("risk", string(al.RiskLevel)).Int("daysAbsent", al.DaysAbsent).Msg(al.ClientName)
			}
			out = sum.Stats
		}
	case "set-staff":
		err = a.Firebase.Auth.SetCustomUserClaims(ctx, *uid, middleware.StaffClaims())
		out = "staff claims set for " + *uid
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("task", *task).Msg("task failed")
	}
	fmt.Printf("ok: %v\n", out)
}

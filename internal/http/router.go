package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"swimfit/backend/internal/config"
	"swimfit/backend/internal/domain/attendance"
	"swimfit/backend/internal/domain/client"
	"swimfit/backend/internal/domain/notifications"
	"swimfit/backend/internal/domain/retention"
	"swimfit/backend/internal/domain/session"
	"swimfit/backend/internal/domain/stats"
	"swimfit/backend/internal/middleware"
	"swimfit/backend/internal/seed"
)

type RouterDeps struct {
	Cfg config.Config
	Log zerolog.Logger
	// Verifier guards /api when set.
	Verifier         middleware.TokenVerifier
	ClientSvc        *client.Service
	SessionSvc       *session.Service
	AttendanceSvc    *attendance.Service
	NotificationsSvc *notifications.Service
	StatsSvc         *stats.Service
	RetentionSvc     *retention.Service
	// Now is the clock used for seeding; defaults to time.Now.
	Now func() time.Time
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestLogging(d.Log)...)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.Cfg.AllowedOrigins, d.Log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "backend": d.Cfg.StoreBackend, "ts": d.Now().UTC().Format(time.RFC3339)})
	})

	r.Route("/api", func(api chi.Router) {
		if d.Verifier != nil {
			api.Use(middleware.WithAuth(d.Verifier))
		}

		// ===== Setup =====
		api.Get("/init-sheets", func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			for _, step := range []func() error{
				func() error { return d.ClientSvc.Init(ctx) },
				func() error { return d.SessionSvc.Init(ctx) },
				func() error { return d.AttendanceSvc.Init(ctx) },
			} {
				if err := step(); err != nil {
					hlog.FromRequest(r).Error().Err(err).Msg("init collections failed")
					WriteJSON(w, 500, map[string]any{"success": false, "message": "Failed to initialize collections", "error": err.Error()})
					return
				}
			}
			WriteJSON(w, 200, map[string]any{"success": true, "message": "All collections initialized"})
		})

		// ===== Clients =====
		api.Get("/clients", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			activeOnly, _ := strconv.ParseBool(q.Get("activeOnly"))
			out, err := d.ClientSvc.List(r.Context(), client.ListClientsInput{
				Query:      strings.TrimSpace(q.Get("q")),
				ActiveOnly: activeOnly,
			})
			if err != nil {
				status, msg := mapClientError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"clients": out})
		})

		api.Post("/clients/add", func(w http.ResponseWriter, r *http.Request) {
			var in client.AddClientInput
			if !readJSON(w, r, &in) {
				return
			}
			out, err := d.ClientSvc.Add(r.Context(), in)
			if err != nil {
				status, msg := mapClientError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true, "client": out})
		})

		api.Get("/clients/{clientId}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.ClientSvc.Get(r.Context(), chi.URLParam(r, "clientId"))
			if err != nil {
				status, msg := mapClientError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		updateClient := func(w http.ResponseWriter, r *http.Request) {
			var in client.UpdateClientInput
			if !readJSON(w, r, &in) {
				return
			}
			out, err := d.ClientSvc.Update(r.Context(), chi.URLParam(r, "clientId"), in)
			if err != nil {
				status, msg := mapClientError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"message": "Client updated successfully", "client": out})
		}
		api.Patch("/clients/{clientId}", updateClient)
		api.Patch("/clients/update/{clientId}", updateClient)

		api.Post("/clients/{clientId}/deactivate", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.ClientSvc.Deactivate(r.Context(), chi.URLParam(r, "clientId"))
			if err != nil {
				status, msg := mapClientError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true, "client": out})
		})

		api.Post("/clients/{clientId}/activate", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.ClientSvc.Activate(r.Context(), chi.URLParam(r, "clientId"))
			if err != nil {
				status, msg := mapClientError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true, "client": out})
		})

		api.Post("/clients/generate-qrcode", func(w http.ResponseWriter, r *http.Request) {
			clientID := strings.TrimSpace(r.URL.Query().Get("clientId"))
			if clientID == "" {
				Fail(w, 400, "Client ID is required")
				return
			}
			out, generated, err := d.ClientSvc.GenerateQRCode(r.Context(), clientID)
			if err != nil {
				status, msg := mapClientError(err)
				Fail(w, status, msg)
				return
			}
			msg := "Client already has a QR code"
			if generated {
				msg = "QR code generated successfully"
			}
			WriteJSON(w, 200, map[string]any{"success": true, "message": msg, "qrCode": out.QRCode, "client": out})
		})

		api.Post("/clients/generate-qrcodes", func(w http.ResponseWriter, r *http.Request) {
			backfill, err := d.ClientSvc.BackfillQRCodes(r.Context())
			if err != nil {
				status, msg := mapClientError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true, "message": "QR codes generated successfully", "stats": backfill})
		})

		// ===== Sessions =====
		api.Get("/sessions", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.SessionSvc.List(r.Context())
			if err != nil {
				status, msg := mapSessionError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"sessions": out})
		})

		addSession := func(status int) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				var in session.AddSessionInput
				if !readJSON(w, r, &in) {
					return
				}
				out, err := d.SessionSvc.Add(r.Context(), in)
				if err != nil {
					code, msg := mapSessionError(err)
					Fail(w, code, msg)
					return
				}
				WriteJSON(w, status, map[string]any{"success": true, "session": out})
			}
		}
		api.Post("/sessions", addSession(201))
		api.Post("/sessions/add", addSession(200))

		api.Get("/sessions/resolve", func(w http.ResponseWriter, r *http.Request) {
			res, ok, err := d.SessionSvc.Resolve(r.Context(), strings.TrimSpace(r.URL.Query().Get("selectedId")))
			if err != nil {
				status, msg := mapSessionError(err)
				Fail(w, status, msg)
				return
			}
			if !ok {
				WriteJSON(w, 200, map[string]any{"session": nil})
				return
			}
			WriteJSON(w, 200, res)
		})

		api.Get("/sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.SessionSvc.Get(r.Context(), chi.URLParam(r, "sessionId"))
			if err != nil {
				status, msg := mapSessionError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		api.Put("/sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
			var in session.UpdateSessionInput
			if !readJSON(w, r, &in) {
				return
			}
			out, err := d.SessionSvc.Update(r.Context(), chi.URLParam(r, "sessionId"), in)
			if err != nil {
				status, msg := mapSessionError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true, "session": out})
		})

		api.Delete("/sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
			if err := d.SessionSvc.Delete(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
				status, msg := mapSessionError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true})
		})

		// ===== Attendance =====
		api.Get("/attendance", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.AttendanceSvc.List(r.Context())
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("list attendance failed")
				Fail(w, 500, "Failed to fetch attendance records")
				return
			}
			WriteJSON(w, 200, map[string]any{"records": out})
		})

		record := func(status int, body func(*attendance.Record) map[string]any) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				var in attendance.RecordInput
				if !readJSON(w, r, &in) {
					return
				}
				out, err := d.AttendanceSvc.Record(r.Context(), in)
				if err != nil {
					if attendance.IsErrBadRequest(err) {
						Fail(w, 400, "Client ID and Session ID are required")
						return
					}
					hlog.FromRequest(r).Error().Err(err).Str("clientId", in.ClientID).Str("sessionId", in.SessionID).Msg("record attendance failed")
					FailWith(w, 500, "Failed to record attendance", err)
					return
				}
				WriteJSON(w, status, body(out))
			}
		}
		api.Post("/attendance", record(200, func(rec *attendance.Record) map[string]any {
			return map[string]any{"success": true, "record": rec}
		}))
		api.Post("/attendance/record", record(201, func(rec *attendance.Record) map[string]any {
			return map[string]any{"success": true, "message": "Attendance recorded successfully", "record": rec}
		}))

		api.Get("/attendance/session", func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
			if sessionID == "" {
				Fail(w, 400, "Session ID is required")
				return
			}
			out, err := d.AttendanceSvc.SessionAttendance(r.Context(), sessionID)
			if err != nil {
				status, msg := mapAttendanceError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		api.Post("/attendance/check-in", func(w http.ResponseWriter, r *http.Request) {
			var in attendance.CheckInInput
			if !readJSON(w, r, &in) {
				return
			}
			out, err := d.AttendanceSvc.CheckIn(r.Context(), in)
			if err != nil {
				status, msg := mapAttendanceError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, map[string]any{
				"success":        true,
				"record":         out.Record,
				"session":        out.Session,
				"rule":           out.Rule,
				"sessionCreated": out.SessionCreated,
				"scanMethod":     out.ScanMethod,
			})
		})

		// ===== Notifications =====
		api.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.NotificationsSvc.Alerts(r.Context())
			if err != nil {
				Fail(w, 500, err.Error())
				return
			}
			WriteJSON(w, 200, map[string]any{"alerts": out})
		})

		// ===== Reports =====
		api.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.StatsSvc.StudioStats(r.Context())
			if err != nil {
				status, msg := mapStatsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		api.Get("/clients/{clientId}/stats", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.StatsSvc.ClientStats(r.Context(), chi.URLParam(r, "clientId"))
			if err != nil {
				status, msg := mapStatsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		api.Get("/retention", func(w http.ResponseWriter, r *http.Request) {
			st := retention.DefaultSettings()
			if raw := r.URL.Query().Get("thresholdDays"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil {
					Fail(w, 400, "thresholdDays must be a number")
					return
				}
				st.ThresholdDays = n
			}
			out, err := d.RetentionSvc.Alerts(r.Context(), st)
			if err != nil {
				if retention.IsErrBadRequest(err) {
					Fail(w, 400, err.Error())
					return
				}
				hlog.FromRequest(r).Error().Err(err).Msg("retention scan failed")
				Fail(w, 500, err.Error())
				return
			}
			WriteJSON(w, 200, out)
		})

		// ===== Admin =====
		api.Route("/admin", func(ar chi.Router) {
			if d.Verifier != nil {
				ar.Use(middleware.RequireStaff)
			}

			ar.Get("/cleanup-notes", func(w http.ResponseWriter, r *http.Request) {
				n, err := d.ClientSvc.CleanupNotes(r.Context())
				if err != nil {
					hlog.FromRequest(r).Error().Err(err).Msg("cleanup notes failed")
					Fail(w, 500, "Failed to clean up notes")
					return
				}
				WriteJSON(w, 200, map[string]any{"success": true, "updatedCount": n})
			})

			ar.Post("/reconcile-usage", func(w http.ResponseWriter, r *http.Request) {
				usage, err := d.AttendanceSvc.ReconcileUsage(r.Context())
				if err != nil {
					Fail(w, 500, err.Error())
					return
				}
				WriteJSON(w, 200, map[string]any{"success": true, "stats": usage})
			})

			ar.Post("/seed", func(w http.ResponseWriter, r *http.Request) {
				res, err := seed.Run(r.Context(), d.ClientSvc, d.SessionSvc, d.AttendanceSvc, d.Now())
				if err != nil {
					WriteJSON(w, 500, map[string]any{"success": false, "message": "Failed to add sample data", "error": err.Error()})
					return
				}
				WriteJSON(w, 200, map[string]any{"success": true, "message": "Sample data added", "data": res})
			})
		})
	})

	return r
}

func mapClientError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case client.IsErrNotFound(err):
		return 404, err.Error()
	case client.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapSessionError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case session.IsErrNotFound(err):
		return 404, err.Error()
	case session.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapAttendanceError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case attendance.IsErrNotFound(err):
		return 404, err.Error()
	case attendance.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapStatsError(err error) (int, string) {
	switch {
	case stats.IsErrNotFound(err):
		return 404, err.Error()
	case stats.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

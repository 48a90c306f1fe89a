package attendance

import (
	"strings"
	"time"

	"swimfit/backend/internal/domain/session"
	"swimfit/backend/internal/kv"
)

// LegacyCollection is the flat collection older records live in. New
// records go under the session they belong to.
const LegacyCollection = "attendance"

const (
	UnknownClient  = "Unknown Client"
	UnknownSession = "Unknown Session"
	maxNotes       = 500
)

var Headers = []string{"id", "clientId", "clientName", "sessionId", "sessionName", "checkInTime", "notes"}

// SessionPath is the nested collection holding one session's records.
func SessionPath(sessionID string) string {
	return kv.Join(session.Collection, sessionID, LegacyCollection)
}

// Record is one check-in. ClientName and SessionName are copies taken when
// the record was written and are never refreshed.
type Record struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	ClientName  string    `json:"clientName,omitempty"`
	SessionID   string    `json:"sessionId"`
	SessionName string    `json:"sessionName,omitempty"`
	CheckInTime time.Time `json:"checkInTime"`
	Notes       string    `json:"notes"`
}

func (r Record) document() kv.Document {
	return kv.Document{
		"id":          r.ID,
		"clientId":    r.ClientID,
		"clientName":  r.ClientName,
		"sessionId":   r.SessionID,
		"sessionName": r.SessionName,
		"checkInTime": r.CheckInTime.UTC(),
		"notes":       r.Notes,
	}
}

func fromDocument(doc kv.Document) (Record, error) {
	var r Record
	if err := kv.Decode(doc, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

type RecordInput struct {
	ClientID  string     `json:"clientId" validate:"required"`
	SessionID string     `json:"sessionId" validate:"required"`
	Notes     string     `json:"notes,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func (in *RecordInput) Trim() {
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.SessionID = strings.TrimSpace(in.SessionID)
	in.Notes = trimNotes(in.Notes)
}

// CheckInInput identifies the client either by a scanned payload or by id.
// SessionID is the session picked on screen, if any.
type CheckInInput struct {
	Payload   string     `json:"payload,omitempty" validate:"required_without=ClientID"`
	ClientID  string     `json:"clientId,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func (in *CheckInInput) Trim() {
	in.Payload = strings.TrimSpace(in.Payload)
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.SessionID = strings.TrimSpace(in.SessionID)
	in.Notes = trimNotes(in.Notes)
}

func trimNotes(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxNotes {
		s = string(r[:maxNotes])
	}
	return s
}

type CheckInResult struct {
	Record         *Record         `json:"record"`
	Session        session.Session `json:"session"`
	Rule           session.Rule    `json:"rule"`
	SessionCreated bool            `json:"sessionCreated"`
	ScanMethod     ScanMethod      `json:"scanMethod,omitempty"`
}

type SessionAttendance struct {
	Session    *session.Session `json:"session"`
	Attendance []Record         `json:"attendance"`
}

type ReconcileStats struct {
	Clients int `json:"clients"`
	Updated int `json:"updated"`
}

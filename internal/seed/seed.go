// Package seed loads a small demo roster: three clients, three sessions on
// one day and one check-in each.
package seed

import (
	"context"
	"fmt"
	"time"

	"swimfit/backend/internal/domain/attendance"
	"swimfit/backend/internal/domain/client"
	"swimfit/backend/internal/domain/session"
)

type Result struct {
	Clients  []string `json:"clients"`
	Sessions []string `json:"sessions"`
	Records  int      `json:"records"`
}

type sampleSession struct {
	name, location, description string
	start, end                  time.Duration
	capacity                    int
}

var sampleClients = []client.AddClientInput{
	{Name: "Emma Johnson", Email: "emma.johnson@example.com", Phone: "555-123-4567", Notes: "Intermediate swimmer"},
	{Name: "Michael Chen", Email: "michael.chen@example.com", Phone: "555-234-5678", Notes: "Advanced, training for competition"},
	{Name: "Sophia Rodriguez", Email: "sophia.r@example.com", Phone: "555-345-6789", Notes: "Beginner, focusing on technique"},
}

var registered = []string{"2025-01-15", "2025-02-03", "2025-03-20"}

var sampleSessions = []sampleSession{
	{"Morning Lap Swim", "Main Pool", "Open lap swimming session for all levels", 7 * time.Hour, 8 * time.Hour, 8},
	{"Beginner Technique", "Training Pool", "Technique fundamentals for beginners", 9*time.Hour + 30*time.Minute, 10*time.Hour + 30*time.Minute, 10},
	{"Advanced Training", "Competition Pool", "High-intensity training for advanced swimmers", 16 * time.Hour, 17*time.Hour + 30*time.Minute, 6},
}

// client index -> session index, with the note stored on the record
var sampleVisits = []struct {
	client, session int
	notes           string
}{
	{0, 0, "Regular attendee"},
	{1, 2, "Preparing for competition"},
	{2, 1, "First session"},
}

// Run adds the demo data with sessions on day's date.
func Run(ctx context.Context, clients *client.Service, sessions *session.Service, recorder *attendance.Service, day time.Time) (Result, error) {
	var res Result
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	var clientIDs []string
	for i, in := range sampleClients {
		reg, err := time.Parse(time.DateOnly, registered[i])
		if err != nil {
			return res, err
		}
		in.RegistrationDate = &reg
		c, err := clients.Add(ctx, in)
		if err != nil {
			return res, fmt.Errorf("seed client %s: %w", in.Name, err)
		}
		clientIDs = append(clientIDs, c.ID)
		res.Clients = append(res.Clients, c.Name)
	}

	var sessionIDs []string
	for _, s := range sampleSessions {
		capacity := s.capacity
		out, err := sessions.Add(ctx, session.AddSessionInput{
			Name:         s.name,
			StartTime:    midnight.Add(s.start).Format(time.RFC3339),
			EndTime:      midnight.Add(s.end).Format(time.RFC3339),
			Location:     s.location,
			Description:  s.description,
			MaxAttendees: &capacity,
		})
		if err != nil {
			return res, fmt.Errorf("seed session %s: %w", s.name, err)
		}
		sessionIDs = append(sessionIDs, out.ID)
		res.Sessions = append(res.Sessions, out.Name)
	}

	for _, v := range sampleVisits {
		if _, err := recorder.Record(ctx, attendance.RecordInput{
			ClientID:  clientIDs[v.client],
			SessionID: sessionIDs[v.session],
			Notes:     v.notes,
		}); err != nil {
			return res, fmt.Errorf("seed attendance: %w", err)
		}
		res.Records++
	}
	return res, nil
}

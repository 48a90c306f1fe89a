package session

import (
	"slices"
	"strings"
	"time"

	"swimfit/backend/internal/kv"
)

const Collection = "sessions"

var Headers = []string{
	"id", "name", "startTime", "endTime", "maxAttendees", "description",
	"location", "level", "selectedDays", "isRecurring", "recurringEndDate", "isAdHoc",
}

const (
	DefaultMaxAttendees = 20
	DefaultLevel        = "All Levels"
)

// Session is one scheduled class. A recurring session repeats on
// SelectedDays (0 = Sunday) at the same time of day as StartTime, from the
// first occurrence until RecurringEndDate.
type Session struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	StartTime        time.Time  `json:"startTime"`
	EndTime          time.Time  `json:"endTime"`
	MaxAttendees     int        `json:"maxAttendees"`
	Description      string     `json:"description"`
	Location         string     `json:"location"`
	Level            string     `json:"level,omitempty"`
	SelectedDays     []int      `json:"selectedDays,omitempty"`
	IsRecurring      bool       `json:"isRecurring"`
	RecurringEndDate *time.Time `json:"recurringEndDate,omitempty"`
	IsAdHoc          bool       `json:"isAdHoc,omitempty"`
}

func (s Session) document() kv.Document {
	doc := kv.Document{
		"id":           s.ID,
		"name":         s.Name,
		"startTime":    s.StartTime.UTC(),
		"endTime":      s.EndTime.UTC(),
		"maxAttendees": s.MaxAttendees,
		"description":  s.Description,
		"location":     s.Location,
		"isRecurring":  s.IsRecurring,
		"level":        nil,
		"selectedDays": nil,
		"isAdHoc":      nil,
	}
	if s.Level != "" {
		doc["level"] = s.Level
	}
	if len(s.SelectedDays) > 0 {
		doc["selectedDays"] = s.SelectedDays
	}
	if s.RecurringEndDate != nil {
		doc["recurringEndDate"] = s.RecurringEndDate.UTC()
	}
	if s.IsAdHoc {
		doc["isAdHoc"] = true
	}
	return kv.Compact(doc)
}

func fromDocument(doc kv.Document) (Session, error) {
	// Older rows kept the weekday list under recurringDays.
	if _, ok := doc["selectedDays"]; !ok {
		if legacy, ok := doc["recurringDays"]; ok {
			doc = doc.Clone()
			doc["selectedDays"] = legacy
		}
	}
	var s Session
	if err := kv.Decode(doc, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Days returns the weekdays a recurring session runs on, falling back to the
// weekday of its first occurrence.
func (s Session) Days() []time.Weekday {
	if len(s.SelectedDays) == 0 {
		return []time.Weekday{s.StartTime.Weekday()}
	}
	out := make([]time.Weekday, 0, len(s.SelectedDays))
	for _, d := range s.SelectedDays {
		out = append(out, time.Weekday(d))
	}
	return out
}

// OccurrenceOn projects the session onto the calendar date of day, in day's
// location. A non-recurring session only matches its own date.
func (s Session) OccurrenceOn(day time.Time) (Session, bool) {
	loc := day.Location()
	start := s.StartTime.In(loc)
	if !s.IsRecurring {
		return s, sameDate(start, day)
	}

	if dateOf(day).Before(dateOf(start)) {
		return Session{}, false
	}
	if s.RecurringEndDate != nil && dateOf(day).After(dateOf(s.RecurringEndDate.In(loc))) {
		return Session{}, false
	}
	if !slices.Contains(s.Days(), day.Weekday()) {
		return Session{}, false
	}

	y, m, d := day.Date()
	occ := s
	occ.StartTime = time.Date(y, m, d, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), loc)
	occ.EndTime = occ.StartTime.Add(s.EndTime.Sub(s.StartTime))
	return occ, true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AddSessionInput takes times as strings so form values such as
// "2025-04-10T07:00" are accepted alongside RFC3339.
type AddSessionInput struct {
	Name             string `json:"name" validate:"required"`
	StartTime        string `json:"startTime" validate:"required"`
	EndTime          string `json:"endTime" validate:"required"`
	Location         string `json:"location" validate:"required"`
	MaxAttendees     *int   `json:"maxAttendees,omitempty"`
	Description      string `json:"description,omitempty"`
	Level            string `json:"level,omitempty"`
	SelectedDays     []int  `json:"selectedDays,omitempty" validate:"omitempty,dive,min=0,max=6"`
	RecurringDays    []int  `json:"recurringDays,omitempty" validate:"omitempty,dive,min=0,max=6"`
	IsRecurring      bool   `json:"isRecurring,omitempty"`
	RecurringEndDate string `json:"recurringEndDate,omitempty"`
}

func (in *AddSessionInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.Level = strings.TrimSpace(in.Level)
	in.RecurringEndDate = strings.TrimSpace(in.RecurringEndDate)
}

type UpdateSessionInput struct {
	Name             *string `json:"name,omitempty"`
	StartTime        *string `json:"startTime,omitempty"`
	EndTime          *string `json:"endTime,omitempty"`
	Location         *string `json:"location,omitempty"`
	MaxAttendees     *int    `json:"maxAttendees,omitempty" validate:"omitempty,min=0"`
	Description      *string `json:"description,omitempty"`
	Level            *string `json:"level,omitempty"`
	SelectedDays     *[]int  `json:"selectedDays,omitempty" validate:"omitempty,dive,min=0,max=6"`
	IsRecurring      *bool   `json:"isRecurring,omitempty"`
	RecurringEndDate *string `json:"recurringEndDate,omitempty"`
}

func (in *UpdateSessionInput) Trim() {
	for _, p := range []*string{in.Name, in.StartTime, in.EndTime, in.Location, in.Description, in.Level, in.RecurringEndDate} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

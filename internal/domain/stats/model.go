package stats

import "time"

// StudioStats is the dashboard summary.
type StudioStats struct {
	Clients    ClientStats     `json:"clients"`
	Sessions   SessionStats    `json:"sessions"`
	Attendance AttendanceStats `json:"attendance"`
}

type ClientStats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	WithPackage int `json:"withPackage"`
}

type SessionStats struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Recurring int `json:"recurring"`
	AdHoc     int `json:"adHoc"`
}

type AttendanceStats struct {
	Total     int               `json:"total"`
	Today     int               `json:"today"`
	ThisMonth MonthlyAttendance `json:"thisMonth"`
}

type MonthlyAttendance struct {
	Total         int `json:"total"`
	UniqueClients int `json:"uniqueClients"`
}

// ClientStatsResult is one client's history.
type ClientStatsResult struct {
	Client     ClientInfo            `json:"client"`
	Attendance ClientAttendanceStats `json:"attendance"`
}

type ClientInfo struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	RegistrationDate    time.Time `json:"registrationDate"`
	DaysSinceRegistered int       `json:"daysSinceRegistered"`
	SessionCount        int       `json:"sessionCount"`
	PackageLimit        *int      `json:"packageLimit,omitempty"`
}

type ClientAttendanceStats struct {
	Total     int        `json:"total"`
	ThisMonth int        `json:"thisMonth"`
	LastVisit *time.Time `json:"lastVisit,omitempty"`
	// FavoriteSession is the session name seen most often.
	FavoriteSession string `json:"favoriteSession,omitempty"`
}

package retention

import (
	"errors"
	"time"
)

var ErrBadRequest = errors.New("bad request")

func IsErrBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }

type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskWarning  RiskLevel = "warning"
	RiskWatch    RiskLevel = "watch"
)

// Settings control when an absent client is flagged. A client is watched at
// ThresholdDays*WatchRatio days without a visit, warned at ThresholdDays and
// critical at ThresholdDays*CriticalMultiplier.
type Settings struct {
	ThresholdDays      int     `json:"thresholdDays"`
	CriticalMultiplier float64 `json:"criticalMultiplier"`
	WatchRatio         float64 `json:"watchRatio"`
}

func DefaultSettings() Settings {
	return Settings{
		ThresholdDays:      10,
		CriticalMultiplier: 2.0,
		WatchRatio:         0.7,
	}
}

// ClientAlert is one active client who has stopped coming.
type ClientAlert struct {
	ClientID   string     `json:"clientId"`
	ClientName string     `json:"clientName"`
	Email      string     `json:"email,omitempty"`
	LastVisit  *time.Time `json:"lastVisit,omitempty"`
	// DaysAbsent counts from the last visit, or from registration for a
	// client who never came.
	DaysAbsent  int       `json:"daysAbsent"`
	TotalVisits int       `json:"totalVisits"`
	RiskLevel   RiskLevel `json:"riskLevel"`
}

type Summary struct {
	Settings  Settings      `json:"settings"`
	Alerts    []ClientAlert `json:"alerts"`
	Stats     AlertStats    `json:"stats"`
	ScannedAt time.Time     `json:"scannedAt"`
}

type AlertStats struct {
	TotalClients int `json:"totalClients"`
	TotalAtRisk  int `json:"totalAtRisk"`
	Critical     int `json:"critical"`
	Warning      int `json:"warning"`
	Watch        int `json:"watch"`
}

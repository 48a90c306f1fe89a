package notifications

// Band buckets package usage.
type Band string

const (
	BandOK          Band = "ok"
	BandApproaching Band = "approaching"
	BandCritical    Band = "critical"
	BandExceeded    Band = "exceeded"
)

var bandRank = map[Band]int{
	BandOK:          0,
	BandApproaching: 1,
	BandCritical:    2,
	BandExceeded:    3,
}

// AtLeast reports whether b is as severe as other.
func (b Band) AtLeast(other Band) bool {
	return bandRank[b] >= bandRank[other]
}

// Usage is one client's package consumption.
type Usage struct {
	ClientID     string  `json:"clientId"`
	ClientName   string  `json:"clientName"`
	SessionCount int     `json:"sessionCount"`
	PackageLimit int     `json:"packageLimit"`
	Percent      float64 `json:"percent"`
	Band         Band    `json:"band"`
}

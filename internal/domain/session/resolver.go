package session

import (
	"time"
)

// Rule names the resolution step that picked a session.
type Rule string

const (
	RuleCurrent       Rule = "current"
	RuleSelected      Rule = "selected"
	RuleRecentlyEnded Rule = "recently-ended"
	RuleUpcoming      Rule = "upcoming"
	RuleMostRecent    Rule = "most-recent"
	RuleAdHoc         Rule = "ad-hoc"
)

// RecentWindow is how long after its end a session still takes check-ins.
const RecentWindow = 2 * time.Hour

type Resolution struct {
	Session Session `json:"session"`
	Rule    Rule    `json:"rule"`
}

// Resolve picks the session a check-in at now belongs to. Rules apply in
// order and the first that matches wins:
//
//  1. a session whose interval contains now
//  2. the selected session, if it exists
//  3. a session that ended within RecentWindow, latest start first
//  4. the earliest upcoming session
//  5. the most recently started session
//
// Recurring sessions are judged on their occurrence today when they have one.
// When several sessions contain now the first in list order wins; nothing
// ranks overlapping sessions. It reports false when sessions is empty.
func Resolve(sessions []Session, selectedID string, now time.Time) (Resolution, bool) {
	if len(sessions) == 0 {
		return Resolution{}, false
	}

	candidates := make([]Session, len(sessions))
	for i, s := range sessions {
		candidates[i] = s
		if s.IsRecurring {
			if occ, ok := s.OccurrenceOn(now); ok {
				candidates[i] = occ
			}
		}
	}

	for _, s := range candidates {
		if !now.Before(s.StartTime) && !now.After(s.EndTime) {
			return Resolution{Session: s, Rule: RuleCurrent}, true
		}
	}

	if selectedID != "" {
		for _, s := range candidates {
			if s.ID == selectedID {
				return Resolution{Session: s, Rule: RuleSelected}, true
			}
		}
	}

	if s, ok := pick(candidates, func(s Session) bool {
		return s.EndTime.Before(now) && now.Sub(s.EndTime) <= RecentWindow
	}, later); ok {
		return Resolution{Session: s, Rule: RuleRecentlyEnded}, true
	}

	if s, ok := pick(candidates, func(s Session) bool {
		return s.StartTime.After(now)
	}, earlier); ok {
		return Resolution{Session: s, Rule: RuleUpcoming}, true
	}

	s, _ := pick(candidates, func(Session) bool { return true }, later)
	return Resolution{Session: s, Rule: RuleMostRecent}, true
}

func later(a, b Session) bool   { return a.StartTime.After(b.StartTime) }
func earlier(a, b Session) bool { return a.StartTime.Before(b.StartTime) }

// pick returns the matching session that better ranks highest. Ties keep
// list order.
func pick(sessions []Session, match func(Session) bool, better func(a, b Session) bool) (Session, bool) {
	var best Session
	found := false
	for _, s := range sessions {
		if !match(s) {
			continue
		}
		if !found || better(s, best) {
			best, found = s, true
		}
	}
	return best, found
}

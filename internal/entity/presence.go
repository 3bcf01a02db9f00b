package entity

import (
	"time"

	"github.com/dustin/go-humanize"
)

// PresenceState is the case of a Presence value.
type PresenceState string

const (
	PresenceOnline   PresenceState = "online"
	PresenceOffline  PresenceState = "offline"
	PresenceLastSeen PresenceState = "last_seen"
)

// Presence is the online status of a user. LastSeen is only meaningful when
// State is PresenceLastSeen; use the constructors to build values.
type Presence struct {
	State    PresenceState `json:"state"`
	LastSeen *time.Time    `json:"last_seen,omitempty"`
}

func Online() Presence  { return Presence{State: PresenceOnline} }
func Offline() Presence { return Presence{State: PresenceOffline} }

// LastSeenAt builds a presence carrying the time the user was last active.
func LastSeenAt(t time.Time) Presence {
	return Presence{State: PresenceLastSeen, LastSeen: &t}
}

// DisplayText renders the presence relative to now.
func (p Presence) DisplayText(now time.Time) string {
	switch p.State {
	case PresenceOnline:
		return "Online Now"
	case PresenceLastSeen:
		if p.LastSeen == nil {
			return "Offline"
		}
		return "Last seen " + humanize.RelTime(*p.LastSeen, now, "ago", "from now")
	}
	return "Offline"
}

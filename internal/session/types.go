package session

import "time"

// plan tiers reported by the identity endpoint
const (
	PlanFree     = "free"
	PlanPremium  = "premium"
	PlanBusiness = "business"
)

// identity record of the current session's user
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsVerified  bool   `json:"is_verified"`
	Plan        string `json:"plan,omitempty"`
}

// reports whether the record identifies a user
func (u *User) Valid() bool {
	return u != nil && u.ID != ""
}

// Snapshot is the persisted form of an authentication result.
// CapturedAt is not serialized; the store keeps it next to the data.
type Snapshot struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	User            *User     `json:"user,omitempty"`
	CapturedAt      time.Time `json:"-"`
}

// Status is the variant tag of a State.
type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// Package session defines the authentication state published to the rest of
// the client.
//
// A State is one of three variants: Unknown (loading), Authenticated (always
// carries a valid user) or Unauthenticated (never carries a user). The fields
// are unexported so the impossible combinations cannot be built.
package session

import (
	"errors"
	"time"
)

// returned through State.Err when an authenticated state is requested without a usable user
var ErrMissingUser = errors.New("authenticated state requires a user")

type State struct {
	status Status
	user   *User
	err    error
}

// initial state, nothing known yet
func Unknown() State {
	return State{status: StatusUnknown}
}

// builds an authenticated state; an invalid user fails closed to Unauthenticated
func Authenticated(user *User) State {
	if !user.Valid() {
		return Unauthenticated(ErrMissingUser)
	}

	return State{status: StatusAuthenticated, user: user}
}

// builds an unauthenticated state, err is optional diagnostics
func Unauthenticated(err error) State {
	return State{status: StatusUnauthenticated, err: err}
}

// converts a persisted snapshot into a state
func FromSnapshot(s Snapshot) State {
	if s.IsAuthenticated {
		return Authenticated(s.User)
	}

	return Unauthenticated(nil)
}

func (s State) Status() Status {
	return s.status
}

func (s State) User() *User {
	return s.user
}

// the error that led to this state, if any. Consumers are not required to
// inspect it.
func (s State) Err() error {
	return s.err
}

func (s State) IsLoading() bool {
	return s.status == StatusUnknown
}

func (s State) IsAuthenticated() bool {
	return s.status == StatusAuthenticated
}

// settled states are the ones a check resolves to
func (s State) Settled() bool {
	return s.status != StatusUnknown
}

// converts the state into a snapshot captured at the given time
func (s State) Snapshot(capturedAt time.Time) Snapshot {
	return Snapshot{
		IsAuthenticated: s.IsAuthenticated(),
		User:            s.user,
		CapturedAt:      capturedAt,
	}
}

func (s State) String() string {
	if s.user != nil {
		return s.status.String() + " (" + s.user.ID + ")"
	}

	return s.status.String()
}

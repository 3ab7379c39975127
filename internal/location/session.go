// Package location acquires the device position once per discovery session,
// gated by a permission decision.
package location

import (
	"errors"
	"fmt"

	"coleta/internal/model"
)

var (
	// ErrInvalidTransition is returned when a session is driven out of order.
	ErrInvalidTransition = errors.New("location: invalid state transition")
	// ErrUnresolved is returned when granting the (0,0) sentinel coordinate.
	ErrUnresolved = errors.New("location: coordinate not resolved")
	// ErrUnavailable is returned by sources that cannot produce a position.
	ErrUnavailable = errors.New("location: no location source available")
)

// DeniedAdvisory is shown when the user refuses location access.
const DeniedAdvisory = "We need your permission to get your location."

// State is a step of the permission/acquisition state machine.
type State int

const (
	Unrequested State = iota
	Requesting
	Granted
	Denied
)

func (s State) String() string {
	switch s {
	case Unrequested:
		return "unrequested"
	case Requesting:
		return "requesting"
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Granted || s == Denied
}

// Session tracks one single-shot location request. The zero value is Unrequested.
type Session struct {
	state      State
	coordinate model.Coordinate
	advisory   string
}

// State returns the current state.
func (s Session) State() State { return s.state }

// Coordinate returns the granted position, or the (0,0) sentinel otherwise.
func (s Session) Coordinate() model.Coordinate { return s.coordinate }

// Advisory returns the user-visible message for a denied session.
func (s Session) Advisory() string { return s.advisory }

// Request moves Unrequested to Requesting.
func (s Session) Request() (Session, error) {
	if s.state != Unrequested {
		return s, fmt.Errorf("%w: request from %s", ErrInvalidTransition, s.state)
	}
	s.state = Requesting
	return s, nil
}

// Grant moves Requesting to Granted with c. The sentinel coordinate is rejected.
func (s Session) Grant(c model.Coordinate) (Session, error) {
	if s.state != Requesting {
		return s, fmt.Errorf("%w: grant from %s", ErrInvalidTransition, s.state)
	}
	if !c.Resolved() {
		return s, ErrUnresolved
	}
	s.state = Granted
	s.coordinate = c
	return s, nil
}

// Deny moves Requesting to Denied. An empty advisory uses DeniedAdvisory.
func (s Session) Deny(advisory string) (Session, error) {
	if s.state != Requesting {
		return s, fmt.Errorf("%w: deny from %s", ErrInvalidTransition, s.state)
	}
	if advisory == "" {
		advisory = DeniedAdvisory
	}
	s.state = Denied
	s.advisory = advisory
	s.coordinate = model.Coordinate{}
	return s, nil
}

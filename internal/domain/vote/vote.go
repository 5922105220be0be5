// Package vote holds the three-valued relevance vote and its toggle table.
package vote

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/newsline/internal/domain"
)

// Vote is a user's relevance judgment on one search result.
type Vote string

// Vote values.
const (
	// Neutral is the initial vote of every rendered result.
	Neutral    Vote = "neutral"
	Relevant   Vote = "relevant"
	Irrelevant Vote = "irrelevant"
)

// IsValid checks if the vote is one of the supported values.
func (v Vote) IsValid() bool {
	return v == Neutral || v == Relevant || v == Irrelevant
}

func (v Vote) String() string { return string(v) }

// Parse converts a string into a Vote. Empty input is Neutral.
func Parse(s string) (Vote, error) {
	v := Vote(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return Neutral, nil
	}
	if !v.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidVote, s)
	}
	return v, nil
}

// Action is a press on one of the two feedback controls.
type Action string

// Action values.
const (
	Like    Action = "like"
	Dislike Action = "dislike"
)

// IsValid checks if the action is one of the supported values.
func (a Action) IsValid() bool {
	return a == Like || a == Dislike
}

func (a Action) String() string { return string(a) }

// ParseAction converts a string into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidAction, s)
	}
	return a, nil
}

// target is the vote an action sets when pressed from Neutral.
func (a Action) target() Vote {
	if a == Like {
		return Relevant
	}
	return Irrelevant
}

// Next returns the vote after pressing action while current is shown.
// Pressing the control that matches the current vote reverts to Neutral;
// every other press sets the action's vote, flipping directly if needed.
func Next(current Vote, action Action) Vote {
	t := action.target()
	if current == t {
		return Neutral
	}
	return t
}

// Fold applies a click sequence starting from Neutral.
func Fold(actions ...Action) Vote {
	v := Neutral
	for _, a := range actions {
		v = Next(v, a)
	}
	return v
}

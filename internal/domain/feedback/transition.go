// Package feedback models per-document relevance feedback and the backend
// update each vote change produces.
package feedback

import "github.com/kailas-cloud/newsline/internal/domain/vote"

// Kind classifies a transition by the backend operation it needs.
type Kind string

// Transition kinds.
const (
	// KindSet registers a new relevant/irrelevant mark (from Neutral).
	KindSet Kind = "set"
	// KindFlip replaces a mark with the opposite one.
	KindFlip Kind = "flip"
	// KindUndo removes a previously registered mark (to Neutral).
	KindUndo Kind = "undo"
)

// Transition is one vote change caused by a single click.
type Transition struct {
	From vote.Vote
	To   vote.Vote
}

// Kind returns the transition classification.
// Reaching Neutral is always an undo of the source vote.
func (t Transition) Kind() Kind {
	switch {
	case t.To == vote.Neutral:
		return KindUndo
	case t.From == vote.Neutral:
		return KindSet
	default:
		return KindFlip
	}
}

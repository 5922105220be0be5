package feedback

import "github.com/kailas-cloud/newsline/internal/domain/vote"

// State tracks the vote of one rendered result for one query.
type State struct {
	docID string
	query string
	vote  vote.Vote
}

// NewState creates a state for a freshly rendered result (vote = Neutral).
func NewState(docID, query string) State {
	return State{docID: docID, query: query, vote: vote.Neutral}
}

// RestoreState creates a state with a known current vote.
// Invalid votes fall back to Neutral.
func RestoreState(docID, query string, v vote.Vote) State {
	if !v.IsValid() {
		v = vote.Neutral
	}
	return State{docID: docID, query: query, vote: v}
}

// DocID returns the document identifier.
func (s *State) DocID() string { return s.docID }

// Query returns the query the document was returned for.
func (s *State) Query() string { return s.query }

// Vote returns the current vote.
func (s *State) Vote() vote.Vote { return s.vote }

// Apply moves the state through the toggle table and reports the change.
func (s *State) Apply(action vote.Action) Transition {
	t := Transition{From: s.vote, To: vote.Next(s.vote, action)}
	s.vote = t.To
	return t
}

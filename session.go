package newsline

import (
	"context"
	"sync"

	feedbackuc "github.com/kailas-cloud/newsline/internal/usecase/feedback"
)

// Session holds the votes cast on one query's results.
// Votes are kept in memory only and start Neutral.
type Session struct {
	query string
	svc   *feedbackuc.Service

	mu    sync.Mutex
	votes map[string]Vote
}

func newSession(svc *feedbackuc.Service, query string) *Session {
	return &Session{query: query, svc: svc, votes: make(map[string]Vote)}
}

// Query returns the query the session votes on.
func (s *Session) Query() string { return s.query }

// SetRelevance presses action on docID and returns the new vote.
// The backend is updated in the background; delivery failures are not reported.
// An unknown action leaves the vote unchanged.
func (s *Session) SetRelevance(docID string, action Action) Vote {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.voteLocked(docID)
	next, err := s.svc.SetRelevance(context.Background(), docID, s.query, current, action)
	if err != nil {
		return current
	}
	if next == Neutral {
		delete(s.votes, docID)
	} else {
		s.votes[docID] = next
	}
	return next
}

// Vote returns the current vote on docID.
func (s *Session) Vote(docID string) Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voteLocked(docID)
}

// Votes returns a snapshot of all non-neutral votes.
func (s *Session) Votes() map[string]Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Vote, len(s.votes))
	for id, v := range s.votes {
		out[id] = v
	}
	return out
}

func (s *Session) voteLocked(docID string) Vote {
	if v, ok := s.votes[docID]; ok {
		return v
	}
	return Neutral
}

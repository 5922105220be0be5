// Package feedback applies relevance votes and hands the resulting backend
// updates to a background dispatcher.
package feedback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsline/internal/domain"
	domfb "github.com/kailas-cloud/newsline/internal/domain/feedback"
	"github.com/kailas-cloud/newsline/internal/domain/vote"
	"github.com/kailas-cloud/newsline/internal/logger"
	"github.com/kailas-cloud/newsline/internal/metrics"
)

// Service handles like/dislike presses.
type Service struct {
	queue Enqueuer
}

// New creates a feedback service.
func New(queue Enqueuer) *Service {
	return &Service{queue: queue}
}

// SetRelevance applies action to the current vote of docID under query and
// returns the new vote. Exactly one update is queued per call; delivery is
// best-effort and never reported to the caller.
//
// A missing docID or query still yields the new vote but sends nothing.
func (s *Service) SetRelevance(
	ctx context.Context, docID, query string, current vote.Vote, action vote.Action,
) (vote.Vote, error) {
	if !action.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidAction, action)
	}
	if !current.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidVote, current)
	}

	state := domfb.RestoreState(docID, query, current)
	t := state.Apply(action)

	u, err := domfb.NewUpdate(state.DocID(), state.Query(), t)
	if err != nil {
		metrics.FeedbackDispatchTotal.WithLabelValues(string(t.Kind()), statusSkipped).Inc()
		if !errors.Is(err, domain.ErrMissingIdentifier) {
			return "", fmt.Errorf("build update: %w", err)
		}
		logger.FromContext(ctx).Debug("Feedback without identifiers, not sent",
			zap.String("doc_id", docID),
			zap.String("query", query),
		)
		return state.Vote(), nil
	}

	// Queue errors are already counted by the dispatcher.
	_ = s.queue.Dispatch(ctx, u)

	return state.Vote(), nil
}

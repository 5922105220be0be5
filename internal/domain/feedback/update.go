package feedback

import (
	"fmt"

	"github.com/kailas-cloud/newsline/internal/domain"
	"github.com/kailas-cloud/newsline/internal/domain/vote"
)

// Update is the logical body of one relevance update sent to the backend.
type Update struct {
	query      string
	undo       bool
	kind       Kind
	relevant   []string
	irrelevant []string
}

// NewUpdate builds the backend update for a transition of docID under query.
//
//   - set:  docID once in the destination list, undo=false
//   - flip: docID twice in the destination list, undo=false
//   - undo: docID once in the source list, undo=true
//
// The doubled id on a flip is what the backend expects; keep it unless the
// backend changes too.
func NewUpdate(docID, query string, t Transition) (Update, error) {
	if docID == "" || query == "" {
		return Update{}, domain.ErrMissingIdentifier
	}
	if !t.From.IsValid() || !t.To.IsValid() || t.From == t.To {
		return Update{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidVote, t.From, t.To)
	}

	u := Update{query: query, kind: t.Kind(), relevant: []string{}, irrelevant: []string{}}
	switch u.kind {
	case KindSet:
		u.put(t.To, docID)
	case KindFlip:
		u.put(t.To, docID, docID)
	case KindUndo:
		u.undo = true
		u.put(t.From, docID)
	}
	return u, nil
}

func (u *Update) put(v vote.Vote, ids ...string) {
	if v == vote.Relevant {
		u.relevant = append(u.relevant, ids...)
		return
	}
	u.irrelevant = append(u.irrelevant, ids...)
}

// Query returns the search text the update is scoped to.
func (u Update) Query() string { return u.query }

// Undo reports whether the update removes a mark.
func (u Update) Undo() bool { return u.undo }

// Kind returns the transition kind that produced the update.
func (u Update) Kind() Kind { return u.kind }

// Relevant returns document ids for the relevant list (never nil).
func (u Update) Relevant() []string { return u.relevant }

// Irrelevant returns document ids for the irrelevant list (never nil).
func (u Update) Irrelevant() []string { return u.irrelevant }

// ShardKey identifies the (query, doc) pair the update belongs to.
func (u Update) ShardKey() string {
	ids := u.relevant
	if len(ids) == 0 {
		ids = u.irrelevant
	}
	if len(ids) == 0 {
		return u.query
	}
	return u.query + "\x00" + ids[0]
}

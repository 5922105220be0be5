package newsline

import (
	"time"

	"github.com/kailas-cloud/newsline/internal/domain/article"
	"github.com/kailas-cloud/newsline/internal/domain/vote"
)

// Vote is a relevance judgment on one result.
type Vote = vote.Vote

// Vote values.
const (
	Neutral    = vote.Neutral
	Relevant   = vote.Relevant
	Irrelevant = vote.Irrelevant
)

// Action is a press on the like or dislike control.
type Action = vote.Action

// Action values.
const (
	Like    = vote.Like
	Dislike = vote.Dislike
)

// Article is one search result.
type Article struct {
	DocID     string
	Title     string
	Summary   string
	Link      string
	Site      string
	Rating    string // LEFT, LEAN_LEFT, CENTER, LEAN_RIGHT, RIGHT, MIXED or as sent
	Publisher string
	Date      *time.Time // nil when undated
}

// RatingLabel returns the rating in human-readable form ("Lean Left").
func (a Article) RatingLabel() string {
	return article.Rating(a.Rating).Label()
}

func articleFromDomain(a *article.Article) Article {
	out := Article{
		DocID:     a.DocID,
		Title:     a.Title,
		Summary:   a.Summary,
		Link:      a.Link,
		Site:      a.Site,
		Rating:    string(a.Rating),
		Publisher: a.Publisher,
	}
	if a.HasDate() {
		d := *a.Date
		out.Date = &d
	}
	return out
}

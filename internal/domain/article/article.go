// Package article holds the news search result shown on the timeline.
package article

import (
	"sort"
	"time"
)

// Rating is the media-bias rating of the article's publisher.
type Rating string

// Known ratings. Unknown values are kept verbatim.
const (
	RatingLeft      Rating = "LEFT"
	RatingLeanLeft  Rating = "LEAN_LEFT"
	RatingCenter    Rating = "CENTER"
	RatingLeanRight Rating = "LEAN_RIGHT"
	RatingRight     Rating = "RIGHT"
	RatingMixed     Rating = "MIXED"
)

// IsKnown reports whether r is one of the defined ratings.
func (r Rating) IsKnown() bool {
	switch r {
	case RatingLeft, RatingLeanLeft, RatingCenter, RatingLeanRight, RatingRight, RatingMixed:
		return true
	}
	return false
}

// Label returns a human-readable rating.
func (r Rating) Label() string {
	switch r {
	case RatingLeft:
		return "Left"
	case RatingLeanLeft:
		return "Lean Left"
	case RatingCenter:
		return "Center"
	case RatingLeanRight:
		return "Lean Right"
	case RatingRight:
		return "Right"
	case RatingMixed:
		return "Mixed"
	case "":
		return "Unrated"
	}
	return string(r)
}

// Article is a single search result.
type Article struct {
	DocID     string
	Title     string
	Summary   string
	Link      string
	Site      string
	Rating    Rating
	Date      *time.Time
	Publisher string
}

// HasDate reports whether the article carries a publish date.
func (a *Article) HasDate() bool { return a.Date != nil && !a.Date.IsZero() }

// SortTimeline orders articles newest first. Undated articles go last,
// equal dates keep backend order.
func SortTimeline(items []Article) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case !a.HasDate():
			return false
		case !b.HasDate():
			return true
		default:
			return a.Date.After(*b.Date)
		}
	})
}

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/newsline/internal/domain/article"
	"github.com/kailas-cloud/newsline/internal/domain/feedback"
)

// Wire literals for the undo flag. The backend expects strings, not booleans.
const (
	undoTrue  = "True"
	undoFalse = "False"
)

// updateRequest is the POST /query/update body.
type updateRequest struct {
	Q          string   `json:"q"`
	Undo       string   `json:"undo"`
	Relevant   []string `json:"relevant"`
	Irrelevant []string `json:"irrelevant"`
}

func updateToWire(u feedback.Update) updateRequest {
	undo := undoFalse
	if u.Undo() {
		undo = undoTrue
	}
	return updateRequest{
		Q:          u.Query(),
		Undo:       undo,
		Relevant:   nonNil(u.Relevant()),
		Irrelevant: nonNil(u.Irrelevant()),
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// searchResponse is the GET /query body.
type searchResponse struct {
	Results []articleDTO `json:"results"`
}

type articleDTO struct {
	DocID     docID    `json:"doc_id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Link      string   `json:"link"`
	Site      string   `json:"site"`
	Rating    string   `json:"rating"`
	Date      *dateStr `json:"date,omitempty"`
	Publisher string   `json:"publisher"`
}

func (d *articleDTO) toDomain() article.Article {
	a := article.Article{
		DocID:     string(d.DocID),
		Title:     d.Title,
		Summary:   d.Summary,
		Link:      d.Link,
		Site:      d.Site,
		Rating:    article.Rating(d.Rating),
		Publisher: d.Publisher,
	}
	if d.Date != nil && !d.Date.t.IsZero() {
		t := d.Date.t
		a.Date = &t
	}
	return a
}

// docID accepts both string and numeric document identifiers.
type docID string

func (d *docID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("doc_id: %w", err)
		}
		*d = docID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("doc_id: %w", err)
	}
	*d = docID(n.String())
	return nil
}

// dateStr parses the backend's ISO dates, with or without zone or time.
// An unrecognized value leaves the article undated.
type dateStr struct {
	t time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (d *dateStr) UnmarshalJSON(b []byte) error {
	d.t = time.Time{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Numbers are unix seconds; null and anything else mean undated.
		var n json.Number
		if json.Unmarshal(b, &n) == nil {
			s = n.String()
		}
	}
	d.t = parseDate(strings.TrimSpace(s))
	return nil
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Python's datetime.min marks "no date".
			if t.UTC().Year() <= 1 {
				return time.Time{}
			}
			return t.UTC()
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC()
	}
	return time.Time{}
}

package searchcache

import (
	"time"

	"github.com/kailas-cloud/newsline/internal/domain/article"
)

// cacheVersion is bumped when the stored layout changes; old entries then miss.
const cacheVersion = 1

type entryDTO struct {
	Version int          `json:"v"`
	Items   []articleDTO `json:"items"`
}

type articleDTO struct {
	DocID     string `json:"doc_id"`
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Link      string `json:"link"`
	Site      string `json:"site,omitempty"`
	Rating    string `json:"rating,omitempty"`
	Date      int64  `json:"date,omitempty"` // unix millis, 0 = undated
	Publisher string `json:"publisher,omitempty"`
}

func toDTO(items []article.Article) entryDTO {
	out := entryDTO{Version: cacheVersion, Items: make([]articleDTO, 0, len(items))}
	for i := range items {
		a := &items[i]
		d := articleDTO{
			DocID:     a.DocID,
			Title:     a.Title,
			Summary:   a.Summary,
			Link:      a.Link,
			Site:      a.Site,
			Rating:    string(a.Rating),
			Publisher: a.Publisher,
		}
		if a.HasDate() {
			d.Date = a.Date.UnixMilli()
		}
		out.Items = append(out.Items, d)
	}
	return out
}

func (e *entryDTO) toDomain() []article.Article {
	out := make([]article.Article, 0, len(e.Items))
	for _, d := range e.Items {
		a := article.Article{
			DocID:     d.DocID,
			Title:     d.Title,
			Summary:   d.Summary,
			Link:      d.Link,
			Site:      d.Site,
			Rating:    article.Rating(d.Rating),
			Publisher: d.Publisher,
		}
		if d.Date != 0 {
			t := time.UnixMilli(d.Date).UTC()
			a.Date = &t
		}
		out = append(out, a)
	}
	return out
}

package chi

import (
	"time"

	"github.com/kailas-cloud/newsline/internal/domain/article"
)

// ErrorCode is the machine-readable code of an API error.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeNotFound           ErrorCode = "not_found"
	CodeSearchFailed       ErrorCode = "search_failed"
	CodeBackendUnavailable ErrorCode = "backend_unavailable"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeInternalError      ErrorCode = "internal_error"
)

type errorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type feedbackRequest struct {
	DocID  string `json:"doc_id"`
	Query  string `json:"q"`
	Vote   string `json:"vote"`
	Action string `json:"action"`
}

type feedbackResponse struct {
	DocID string `json:"doc_id"`
	Query string `json:"q"`
	Vote  string `json:"vote"`
}

// SearchResponse is the JSON form of a timeline, shared by the API and the CLI.
type SearchResponse struct {
	Query string            `json:"query"`
	Items []ArticleResponse `json:"items"`
	Total int               `json:"total"`
}

// ArticleResponse is one timeline item in backend field names.
type ArticleResponse struct {
	DocID       string     `json:"doc_id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Link        string     `json:"link"`
	Site        string     `json:"site,omitempty"`
	Rating      string     `json:"rating,omitempty"`
	RatingLabel string     `json:"rating_label"`
	Date        *time.Time `json:"date,omitempty"`
	Publisher   string     `json:"publisher,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewSearchResponse builds the JSON timeline for query.
func NewSearchResponse(query string, items []article.Article) SearchResponse {
	resp := SearchResponse{Query: query, Items: make([]ArticleResponse, len(items)), Total: len(items)}
	for i := range items {
		resp.Items[i] = articleToResponse(&items[i])
	}
	return resp
}

func articleToResponse(a *article.Article) ArticleResponse {
	resp := ArticleResponse{
		DocID:       a.DocID,
		Title:       a.Title,
		Summary:     a.Summary,
		Link:        a.Link,
		Site:        a.Site,
		Rating:      string(a.Rating),
		RatingLabel: a.Rating.Label(),
		Publisher:   a.Publisher,
	}
	if a.HasDate() {
		d := a.Date.UTC()
		resp.Date = &d
	}
	return resp
}

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/newsline/internal/domain"
	"github.com/kailas-cloud/newsline/internal/domain/feedback"
	"github.com/kailas-cloud/newsline/internal/domain/vote"
)

// recorder captures requests hitting the fake backend.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func (r *recorder) handler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.requests = append(r.requests, recordedRequest{
			method: req.Method,
			path:   req.URL.Path,
			query:  req.URL.RawQuery,
			header: req.Header.Clone(),
			body:   b,
		})
		r.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func mustUpdate(t *testing.T, docID, query string, from, to vote.Vote) feedback.Update {
	t.Helper()
	u, err := feedback.NewUpdate(docID, query, feedback.Transition{From: from, To: to})
	if err != nil {
		t.Fatalf("NewUpdate: %v", err)
	}
	return u
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "not a url", "/relative"} {
		if _, err := NewClient(&Config{BaseURL: u}); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestUpdate_WireContract(t *testing.T) {
	tests := []struct {
		name     string
		docID    string
		query    string
		from, to vote.Vote
		want     string
	}{
		{
			name: "like from neutral", docID: "A", query: "cats",
			from: vote.Neutral, to: vote.Relevant,
			want: `{"q":"cats","undo":"False","relevant":["A"],"irrelevant":[]}`,
		},
		{
			name: "like again undoes", docID: "A", query: "cats",
			from: vote.Relevant, to: vote.Neutral,
			want: `{"q":"cats","undo":"True","relevant":["A"],"irrelevant":[]}`,
		},
		{
			name: "dislike from neutral", docID: "B", query: "dogs",
			from: vote.Neutral, to: vote.Irrelevant,
			want: `{"q":"dogs","undo":"False","relevant":[],"irrelevant":["B"]}`,
		},
		{
			name: "flip to relevant", docID: "B", query: "dogs",
			from: vote.Irrelevant, to: vote.Relevant,
			want: `{"q":"dogs","undo":"False","relevant":["B","B"],"irrelevant":[]}`,
		},
		{
			name: "undo irrelevant", docID: "C", query: "birds",
			from: vote.Irrelevant, to: vote.Neutral,
			want: `{"q":"birds","undo":"True","relevant":[],"irrelevant":["C"]}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			c := newTestClient(t, rec.handler(http.StatusOK, "null"))

			if err := c.Update(context.Background(), mustUpdate(t, tc.docID, tc.query, tc.from, tc.to)); err != nil {
				t.Fatalf("Update: %v", err)
			}

			if len(rec.requests) != 1 {
				t.Fatalf("expected 1 request, got %d", len(rec.requests))
			}
			got := rec.requests[0]
			if got.method != http.MethodPost || got.path != "/query/update" {
				t.Errorf("request line: %s %s", got.method, got.path)
			}
			if got.header.Get("Accept") != "*/*" {
				t.Errorf("Accept = %q", got.header.Get("Accept"))
			}
			if got.header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", got.header.Get("Content-Type"))
			}
			if string(got.body) != tc.want {
				t.Errorf("body:\ngot:  %s\nwant: %s", got.body, tc.want)
			}
		})
	}
}

func TestUpdate_BackendError(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusInternalServerError, "boom"))

	err := c.Update(context.Background(), mustUpdate(t, "A", "cats", vote.Neutral, vote.Relevant))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestUpdate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(&Config{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	err = c.Update(context.Background(), mustUpdate(t, "A", "cats", vote.Neutral, vote.Relevant))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestSearch_ParsesResults(t *testing.T) {
	body := `{"results":[
		{"doc_id":"7","title":"Cats rule","summary":"s","link":"https://a/1","site":"https://a",
		 "rating":"CENTER","date":"2022-03-04T05:06:07+00:00","publisher":"A News"},
		{"doc_id":12,"title":"Undated","summary":"","link":"https://b/2","site":"https://b",
		 "rating":"LEAN_LEFT","publisher":"B Daily"},
		{"doc_id":13,"title":"Naive date","link":"https://c/3","rating":"MIXED",
		 "date":"2021-01-02T03:04:05","publisher":"C"},
		{"doc_id":14,"title":"Min date","link":"https://d/4","rating":"RIGHT",
		 "date":"0001-01-01T00:00:00+00:00","publisher":"D"}
	]}`
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusOK, body))

	got, err := c.Search(context.Background(), "cats & dogs", 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	req := rec.requests[0]
	if req.method != http.MethodGet || req.path != "/query" {
		t.Errorf("request line: %s %s", req.method, req.path)
	}
	if req.query != "n_results=20&q=cats+%26+dogs" {
		t.Errorf("query string = %q", req.query)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 results, got %d", len(got))
	}
	if got[0].DocID != "7" || got[0].Rating != "CENTER" || got[0].Publisher != "A News" {
		t.Errorf("first result: %+v", got[0])
	}
	want := time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)
	if got[0].Date == nil || !got[0].Date.Equal(want) {
		t.Errorf("first date = %v, want %v", got[0].Date, want)
	}
	if got[1].DocID != "12" || got[1].Date != nil {
		t.Errorf("numeric id / missing date: %+v", got[1])
	}
	if got[2].Date == nil || got[2].Date.Year() != 2021 {
		t.Errorf("naive date not parsed: %+v", got[2].Date)
	}
	if got[3].Date != nil {
		t.Errorf("datetime.min must read as undated, got %v", got[3].Date)
	}
}

func TestSearch_Non200(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusBadGateway, "upstream down"))

	_, err := c.Search(context.Background(), "cats", 0)
	if !errors.Is(err, domain.ErrSearchFailed) {
		t.Fatalf("expected ErrSearchFailed, got %v", err)
	}
	var se *domain.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
	if strings.Contains(rec.requests[0].query, "n_results") {
		t.Errorf("n_results must be omitted when n <= 0: %q", rec.requests[0].query)
	}
}

func TestSearch_InvalidJSON(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusOK, "{not json"))

	if _, err := c.Search(context.Background(), "cats", 5); !errors.Is(err, domain.ErrSearchFailed) {
		t.Fatalf("expected ErrSearchFailed, got %v", err)
	}
}

func TestSearch_BasePathPreserved(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, `{"results":[]}`))
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{BaseURL: srv.URL + "/api/"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Search(context.Background(), "x", 1); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec.requests[0].path != "/api/query" {
		t.Errorf("path = %q, want /api/query", rec.requests[0].path)
	}
}

func TestHealthCheck(t *testing.T) {
	ok := newTestClient(t, http.NotFoundHandler())
	if err := ok.HealthCheck(context.Background()); err != nil {
		t.Fatalf("404 should count as reachable: %v", err)
	}

	rec := &recorder{}
	bad := newTestClient(t, rec.handler(http.StatusServiceUnavailable, ""))
	if err := bad.HealthCheck(context.Background()); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestUpdateToWire_NeverNull(t *testing.T) {
	u := mustUpdate(t, "A", "q", vote.Neutral, vote.Relevant)
	b, err := json.Marshal(updateToWire(u))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if !reflect.DeepEqual(m["irrelevant"], []any{}) {
		t.Errorf("irrelevant = %#v, want empty array", m["irrelevant"])
	}
}

func TestSearch_UnparseableDateLeavesItemUndated(t *testing.T) {
	body := `{"results":[
		{"doc_id":"1","title":"Odd date","link":"https://a/1","date":"next Tuesday"},
		{"doc_id":"2","title":"Object date","link":"https://a/2","date":{"y":2020}},
		{"doc_id":"3","title":"Good","link":"https://a/3","date":"2022-03-04"}
	]}`
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusOK, body))

	got, err := c.Search(context.Background(), "cats", 3)
	if err != nil {
		t.Fatalf("a bad date must not fail the search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].Date != nil || got[1].Date != nil {
		t.Errorf("unparseable dates should read as undated: %v, %v", got[0].Date, got[1].Date)
	}
	if got[2].Date == nil || got[2].Date.Year() != 2022 {
		t.Errorf("valid date lost: %v", got[2].Date)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2022-03-04T05:06:07+02:00", time.Date(2022, 3, 4, 3, 6, 7, 0, time.UTC)},
		{"2022-03-04 05:06:07", time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)},
		{"2022-03-04", time.Date(2022, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"1700000000", time.Unix(1700000000, 0).UTC()},
		{"0001-01-01T00:00:00", time.Time{}},
		{"yesterday", time.Time{}},
		{"", time.Time{}},
	}
	for _, tc := range tests {
		if got := parseDate(tc.in); !got.Equal(tc.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

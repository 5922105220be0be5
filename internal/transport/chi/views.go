package chi

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/kailas-cloud/newsline/internal/domain/article"
	domfb "github.com/kailas-cloud/newsline/internal/domain/feedback"
	"github.com/kailas-cloud/newsline/internal/domain/vote"
)

const htmxSrc = "https://unpkg.com/htmx.org@1.9.12"

const pageStyle = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#222}
header{display:flex;flex-direction:column;align-items:center;padding:24px}
header.landing{min-height:60vh;justify-content:center}
.search-bar{display:flex;height:75px;border-radius:50px;background:#fff;overflow:hidden;box-shadow:0 1px 4px #0002;max-width:95vw}
.search-bar label{margin:0 10px 0 50px;display:flex;align-items:center}
.search-bar input{border:0;padding:10px;font-size:25px;flex:1}
.search-bar button{border:0;padding:0 50px 0 35px;font-size:24px;background:#89cff0;cursor:pointer}
.timeline{list-style:none;max-width:860px;margin:0 auto;padding:0 16px;border-left:3px solid #89cff0}
.timeline li{position:relative;margin:0 0 24px 24px;background:#fff;border-radius:8px;padding:16px;box-shadow:0 1px 3px #0002}
.timeline time{font-size:13px;color:#666}
.badge{font-size:12px;padding:2px 8px;border-radius:10px;background:#eee;margin-left:8px}
.vote{display:inline-flex;gap:6px;margin-top:8px}
.vote button{border:1px solid #ccc;background:#fff;border-radius:14px;padding:2px 10px;cursor:pointer}
.vote button[aria-pressed=true]{background:#89cff0;border-color:#89cff0}
.error{max-width:860px;margin:16px auto;padding:12px 16px;background:#fde8e8;border-radius:8px}
.empty{text-align:center;color:#666}`

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func esc(s string) string { return templ.EscapeString(s) }

// pageView wraps body in the HTML document.
func pageView(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, esc(title), `</title>`,
			`<script src="`, htmxSrc, `"></script>`,
			`<style>`, pageStyle, `</style></head><body>`,
		); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</body></html>`)
	})
}

// landingView is the search page before any query: title above the bar.
func landingView(title, query string, width int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<header class="landing"><h1>`, esc(title), `</h1>`); err != nil {
			return err
		}
		if err := searchBarView(query, width).Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</header>`)
	})
}

// resultsView is the search bar followed by the timeline or an error.
func resultsView(query string, width int, items []article.Article, page pageState, errMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<header class="search-results-header">`); err != nil {
			return err
		}
		if err := searchBarView(query, width).Render(ctx, w); err != nil {
			return err
		}
		if err := write(w, `</header>`); err != nil {
			return err
		}
		if errMsg != "" {
			return errorView(errMsg).Render(ctx, w)
		}
		return timelineView(query, items, page).Render(ctx, w)
	})
}

func searchBarView(query string, width int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w,
			`<form class="search-bar" method="get" action="/search" style="width:`, strconv.Itoa(width), `px">`,
			`<label for="q">Search:</label>`,
			`<input id="q" class="search-input" type="text" name="q" value="`, esc(query), `" autofocus>`,
			`<button class="search-button" type="submit">Submit</button>`,
			`</form>`,
		)
	})
}

func timelineView(query string, items []article.Article, page pageState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(items) == 0 {
			return write(w, `<p class="empty">No results for &quot;`, esc(query), `&quot;.</p>`)
		}
		if err := write(w, `<ol class="timeline">`); err != nil {
			return err
		}
		encoded := page.encode()
		for i := range items {
			state := domfb.RestoreState(items[i].DocID, query, page.voteFor(items[i].DocID))
			if err := timelineItemView(&items[i], &state, encoded).Render(ctx, w); err != nil {
				return err
			}
		}
		return write(w, `</ol>`)
	})
}

func timelineItemView(a *article.Article, state *domfb.State, page string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		when := `<time>Undated</time>`
		if a.HasDate() {
			when = `<time datetime="` + a.Date.Format("2006-01-02") + `">` + a.Date.Format("Jan 2, 2006") + `</time>`
		}
		if err := write(w,
			`<li class="timeline-item" data-doc-id="`, esc(a.DocID), `">`, when,
			`<h3><a href="`, esc(string(templ.URL(a.Link))), `" target="_blank" rel="noopener">`, esc(a.Title), `</a></h3>`,
			`<div class="source">`, esc(a.Publisher),
		); err != nil {
			return err
		}
		if err := ratingBadgeView(a.Rating).Render(ctx, w); err != nil {
			return err
		}
		if err := write(w, `</div>`); err != nil {
			return err
		}
		if a.Summary != "" {
			if err := write(w, `<p>`, esc(a.Summary), `</p>`); err != nil {
				return err
			}
		}
		if err := voteControlsView(state.DocID(), state.Query(), state.Vote(), page).Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</li>`)
	})
}

func ratingBadgeView(r article.Rating) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		class := "badge"
		if r.IsKnown() {
			class += " badge-" + string(r)
		}
		return write(w, `<span class="`, esc(class), `">`, esc(r.Label()), `</span>`)
	})
}

// voteControlsView renders the like/dislike pair carrying the current vote.
// The form replaces itself with the server's answer. page is the encoded
// pageState used when the post falls back to a full page load.
func voteControlsView(docID, query string, current vote.Vote, page string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w,
			`<form class="vote vote-`, esc(current.String()), `" method="post" action="/feedback" hx-post="/feedback" hx-swap="outerHTML">`,
			`<input type="hidden" name="doc_id" value="`, esc(docID), `">`,
			`<input type="hidden" name="q" value="`, esc(query), `">`,
			`<input type="hidden" name="vote" value="`, esc(current.String()), `">`,
			`<input type="hidden" name="page" value="`, esc(page), `">`,
			`<button type="submit" name="action" value="like" title="Relevant" aria-pressed="`, pressed(current == vote.Relevant), `">&#128077;</button>`,
			`<button type="submit" name="action" value="dislike" title="Not relevant" aria-pressed="`, pressed(current == vote.Irrelevant), `">&#128078;</button>`,
			`</form>`,
		)
	})
}

func errorView(msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w, `<div class="error" role="alert">`, esc(msg), `</div>`)
	})
}

func pressed(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

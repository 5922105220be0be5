package chi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/newsline/internal/domain/vote"
)

// votePrefix marks a results-page parameter holding one document's vote: vote.<doc_id>=relevant.
const votePrefix = "vote."

// pageState is what a results page needs to be rendered again after a plain
// (non-HTMX) vote: the result count and every non-neutral vote on the page.
type pageState struct {
	n     int
	votes map[string]vote.Vote
}

// parsePageState reads n and vote.* parameters. Unknown or neutral votes are ignored.
func parsePageState(params url.Values) pageState {
	p := pageState{votes: make(map[string]vote.Vote)}
	if n, err := strconv.Atoi(params.Get("n")); err == nil && n > 0 {
		p.n = n
	}
	for key, vals := range params {
		docID, ok := strings.CutPrefix(key, votePrefix)
		if !ok || docID == "" || len(vals) == 0 {
			continue
		}
		v, err := vote.Parse(vals[len(vals)-1])
		if err != nil || v == vote.Neutral {
			continue
		}
		p.votes[docID] = v
	}
	return p
}

// voteFor returns the vote shown for docID.
func (p pageState) voteFor(docID string) vote.Vote {
	if v, ok := p.votes[docID]; ok {
		return v
	}
	return vote.Neutral
}

// with returns a copy with docID set to v. An empty docID changes nothing.
func (p pageState) with(docID string, v vote.Vote) pageState {
	out := pageState{n: p.n, votes: make(map[string]vote.Vote, len(p.votes)+1)}
	for id, cur := range p.votes {
		out.votes[id] = cur
	}
	switch {
	case docID == "":
	case v == vote.Neutral:
		delete(out.votes, docID)
	default:
		out.votes[docID] = v
	}
	return out
}

func (p pageState) values() url.Values {
	vals := url.Values{}
	if p.n > 0 {
		vals.Set("n", strconv.Itoa(p.n))
	}
	for id, v := range p.votes {
		vals.Set(votePrefix+id, v.String())
	}
	return vals
}

// encode is the hidden "page" form field.
func (p pageState) encode() string { return p.values().Encode() }

// searchURL is the results page for query with this state.
func (p pageState) searchURL(query string) string {
	vals := p.values()
	vals.Set("q", query)
	return "/search?" + vals.Encode()
}

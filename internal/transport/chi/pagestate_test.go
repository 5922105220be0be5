package chi

import (
	"net/url"
	"testing"

	"github.com/kailas-cloud/newsline/internal/domain/vote"
)

func TestParsePageState(t *testing.T) {
	params := url.Values{
		"q":        {"cats"},
		"n":        {"7"},
		"vote.A":   {"relevant"},
		"vote.B.2": {"irrelevant"},
		"vote.C":   {"neutral"},
		"vote.D":   {"bogus"},
		"vote.":    {"relevant"},
		"other.E":  {"relevant"},
	}
	p := parsePageState(params)

	if p.n != 7 {
		t.Errorf("n = %d, want 7", p.n)
	}
	want := map[string]vote.Vote{"A": vote.Relevant, "B.2": vote.Irrelevant}
	if len(p.votes) != len(want) {
		t.Fatalf("votes = %v, want %v", p.votes, want)
	}
	for id, v := range want {
		if p.voteFor(id) != v {
			t.Errorf("voteFor(%q) = %s, want %s", id, p.voteFor(id), v)
		}
	}
	if p.voteFor("missing") != vote.Neutral {
		t.Error("unknown documents start neutral")
	}
}

func TestPageState_With(t *testing.T) {
	base := parsePageState(url.Values{"vote.A": {"relevant"}})

	added := base.with("B", vote.Irrelevant)
	if added.voteFor("B") != vote.Irrelevant || added.voteFor("A") != vote.Relevant {
		t.Errorf("with B: %v", added.votes)
	}
	if base.voteFor("B") != vote.Neutral {
		t.Error("with must not modify the receiver")
	}

	cleared := added.with("A", vote.Neutral)
	if _, ok := cleared.votes["A"]; ok {
		t.Error("a neutral vote is not kept")
	}
	if got := base.with("", vote.Relevant); len(got.votes) != 1 {
		t.Errorf("empty doc id must not be stored: %v", got.votes)
	}
}

func TestPageState_SearchURL(t *testing.T) {
	p := pageState{n: 5}.with("A&B", vote.Relevant)

	got := p.searchURL("cats & dogs")
	want := "/search?n=5&q=cats+%26+dogs&vote.A%26B=relevant"
	if got != want {
		t.Errorf("searchURL = %q, want %q", got, want)
	}

	back, err := url.ParseQuery(got[len("/search?"):])
	if err != nil {
		t.Fatal(err)
	}
	if parsePageState(back).voteFor("A&B") != vote.Relevant {
		t.Error("vote lost on round trip")
	}
}

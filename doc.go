// Package newsline is a Go client for a news-search backend with relevance
// feedback.
//
// Search returns results in timeline order (newest first, undated last).
// A Session tracks one query's like/dislike votes and sends each change to
// the backend in the background, so the caller never waits on feedback.
//
//	client, _ := newsline.New("http://localhost:8000",
//	    newsline.WithTimeout(10*time.Second),
//	)
//	defer client.Close()
//
//	items, _ := client.Search(ctx, "cats", 20)
//	s := client.Session("cats")
//	s.SetRelevance(items[0].DocID, newsline.Like)    // relevant
//	s.SetRelevance(items[0].DocID, newsline.Dislike) // irrelevant, sent as a flip
//
// Close waits for queued feedback to be delivered.
package newsline

package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	domfb "github.com/kailas-cloud/newsline/internal/domain/feedback"
	"github.com/kailas-cloud/newsline/internal/domain/vote"
	feedbackuc "github.com/kailas-cloud/newsline/internal/usecase/feedback"
)

func voteCmd(opts *rootOptions) *cobra.Command {
	var from, action string

	cmd := &cobra.Command{
		Use:   "vote <doc-id> <query>",
		Short: "Send one relevance vote for a document",
		Long: `Apply a like or dislike to a document shown for a query and send the
resulting relevance update to the backend.

--from is the vote currently shown (neutral, relevant, irrelevant).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := vote.Parse(from)
			if err != nil {
				return err
			}
			act, err := vote.ParseAction(action)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			up := &reportingUpdater{inner: a.backend}
			dispatcher := feedbackuc.NewDispatcher(up, feedbackuc.DispatcherConfig{Workers: 1, QueueSize: 1}, a.logger)
			next, err := feedbackuc.New(dispatcher).SetRelevance(cmd.Context(), args[0], args[1], current, act)
			dispatcher.Close()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), next)
			if sent, err := up.result(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: update not delivered: %v\n", err)
			} else if !sent {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: no update sent (missing document id or query)")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", string(vote.Neutral), "current vote: neutral, relevant, irrelevant")
	cmd.Flags().StringVar(&action, "action", "", "like or dislike")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

// reportingUpdater remembers the delivery outcome so the CLI can report it.
type reportingUpdater struct {
	inner feedbackuc.Updater

	mu   sync.Mutex
	sent bool
	err  error
}

func (r *reportingUpdater) Update(ctx context.Context, u domfb.Update) error {
	err := r.inner.Update(ctx, u)
	r.mu.Lock()
	r.sent, r.err = true, err
	r.mu.Unlock()
	return err
}

func (r *reportingUpdater) result() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent, r.err
}

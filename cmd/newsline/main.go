// Command newsline serves the NewsLine timeline viewer and offers CLI access
// to search and relevance feedback.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/newsline/internal/config"
)

// rootOptions are the global flags.
type rootOptions struct {
	env        string
	backendURL string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "newsline",
		Short: "NewsLine - news search results on a timeline",
		Long: `NewsLine queries a news-search backend, shows the results as a vertical
timeline and sends like/dislike relevance feedback back to the backend.

Run 'newsline serve' to start the web viewer.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "config environment (local, dev, prod)")
	rootCmd.PersistentFlags().StringVar(&opts.backendURL, "backend", "", "news-search backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		serveCmd(opts),
		searchCmd(opts),
		voteCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

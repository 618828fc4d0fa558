package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ytsearch",
	Short: "Index and search YouTube caption transcripts",
	Long: `ytsearch scrapes a YouTube channel with yt-dlp, downloads the captions of
its videos, links every caption line to its neighbours and indexes the lines
into a local search index backed by a document store.`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

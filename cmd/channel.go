package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-search/internal/service/ingest"
)

// channelCmd represents the channel command
var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "YouTube channel operations",
	Long:  `Index the captions of a YouTube channel or remove a channel from the index.`,
}

// channelIndexCmd ingests a channel
var channelIndexCmd = &cobra.Command{
	Use:   "index [URL]",
	Short: "Index the captions of a YouTube channel",
	Long: `Scrape a channel with yt-dlp, resolve the captions of its videos in the
requested language and replace everything stored and indexed for the channel.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channelURL := args[0]

		// Get flags
		lang, _ := cmd.Flags().GetString("lang")
		channelLang, _ := cmd.Flags().GetString("channel-lang")
		maxVideos, _ := cmd.Flags().GetInt("max-videos")
		format, _ := cmd.Flags().GetString("format")

		formatter, err := NewFormatter(format)
		if err != nil {
			return err
		}

		factory, err := NewServiceFactory()
		if err != nil {
			return err
		}
		defer factory.Close()

		ctx := cmd.Context()
		service, cleanup, err := factory.CreateIngestService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		report, runErr := service.IngestChannel(ctx, ingest.Request{
			ChannelURL:  channelURL,
			Lang:        lang,
			ChannelLang: channelLang,
			MaxVideos:   maxVideos,
		})
		if report != nil {
			output, err := formatter.FormatReport(report)
			if err != nil {
				return err
			}
			fmt.Print(output)
		}
		if runErr != nil {
			return fmt.Errorf("failed to index channel: %w", runErr)
		}
		return nil
	},
}

// channelResetCmd removes a channel from the store and the index
var channelResetCmd = &cobra.Command{
	Use:   "reset [CHANNEL_ID]",
	Short: "Remove a channel from the store and the search index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channelID := args[0]

		format, _ := cmd.Flags().GetString("format")
		formatter, err := NewFormatter(format)
		if err != nil {
			return err
		}

		factory, err := NewServiceFactory()
		if err != nil {
			return err
		}
		defer factory.Close()

		ctx := cmd.Context()
		service, cleanup, err := factory.CreateIngestService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := service.Reset(ctx, channelID)
		if err != nil {
			return fmt.Errorf("failed to reset channel: %w", err)
		}

		output, err := formatter.FormatReset(channelID, report)
		if err != nil {
			return err
		}
		fmt.Print(output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(channelCmd)
	channelCmd.AddCommand(channelIndexCmd)
	channelCmd.AddCommand(channelResetCmd)

	// Add flags
	channelIndexCmd.Flags().String("lang", "en", "Caption language to index")
	channelIndexCmd.Flags().String("channel-lang", "", "Declared language of the channel (defaults to --lang)")
	channelIndexCmd.Flags().Int("max-videos", 0, "Index at most this many videos (0 for all)")
	channelIndexCmd.Flags().String("format", "text", "Output format (text, json)")
	channelResetCmd.Flags().String("format", "text", "Output format (text, json)")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-search/internal/errors"
)

// videoCmd represents the video command
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "YouTube video operations",
	Long:  `Inspect the captions of a single YouTube video.`,
}

// videoCaptionsCmd resolves, decodes and links the captions of one video without writing anything
var videoCaptionsCmd = &cobra.Command{
	Use:   "captions [VIDEO_ID]",
	Short: "Show the linked captions of a video (dry run)",
	Long: `Resolve the caption of a video in the requested language, decode and link its
tracks and print them. Nothing is stored or indexed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID := args[0]

		lang, _ := cmd.Flags().GetString("lang")
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

		if !factory.Config().SupportsLanguage(lang) {
			return errors.New(errors.CodeUnsupportedLanguage, fmt.Sprintf("language %q is not supported", lang))
		}

		ctx := cmd.Context()
		meta, err := factory.CreateScraper().FetchVideo(ctx, videoID)
		if err != nil {
			return fmt.Errorf("failed to fetch video: %w", err)
		}

		res, err := factory.CreateResolver().Resolve(ctx, meta, lang)
		if err != nil {
			return fmt.Errorf("failed to resolve captions: %w", err)
		}

		output, err := formatter.FormatCaptions(meta.Video.ID, res.Captions)
		if err != nil {
			return err
		}
		fmt.Print(output)

		for _, w := range res.Warnings {
			cmd.PrintErrln("warning:", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(videoCmd)
	videoCmd.AddCommand(videoCaptionsCmd)

	videoCaptionsCmd.Flags().String("lang", "en", "Caption language")
	videoCaptionsCmd.Flags().String("format", "text", "Output format (text, json)")
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-search/internal/search"
)

// searchCmd searches indexed caption tracks
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search indexed captions",
	Long: `Search caption tracks by their text and surrounding context. Every hit is shown
with its previous and next track and a link to the moment in the video.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := search.Query{Text: strings.Join(args, " ")}

		q.CaptionLang, _ = cmd.Flags().GetString("lang")
		q.ChannelLang, _ = cmd.Flags().GetString("channel-lang")
		q.Size, _ = cmd.Flags().GetInt("size")
		q.From, _ = cmd.Flags().GetInt("from")
		if cmd.Flags().Changed("auto") {
			auto, _ := cmd.Flags().GetBool("auto")
			q.IsAuto = &auto
		}
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

		idx, cleanup, err := factory.OpenIndex()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := idx.Search(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		output, err := formatter.FormatSearch(result)
		if err != nil {
			return err
		}
		fmt.Print(output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("lang", "", "Only match captions in this language")
	searchCmd.Flags().String("channel-lang", "", "Only match channels declared in this language")
	searchCmd.Flags().Bool("auto", false, "Only automatic (true) or only manual (false) captions")
	searchCmd.Flags().Int("size", 10, "Number of hits")
	searchCmd.Flags().Int("from", 0, "Offset of the first hit")
	searchCmd.Flags().String("format", "text", "Output format (text, json)")
}

// Package assembler flattens channel, video, caption and track records into
// self-contained search documents.
package assembler

import (
	"iter"
	"strconv"
	"strings"

	"github.com/Taichi-iskw/yt-search/internal/model"
)

// Documents returns the documents of every track of captions, in caption then
// track order. The sequence is lazy; ranging over it again rebuilds it from the
// same inputs. Tracks must not be mutated while the sequence is consumed.
func Documents(channel *model.Channel, video *model.Video, captions []*model.Caption) iter.Seq[model.Document] {
	videoDoc := VideoDoc(channel, video)
	return func(yield func(model.Document) bool) {
		for _, c := range captions {
			captionDoc := model.CaptionDoc{
				ID:       c.ID,
				IsAuto:   c.IsAuto(),
				LangCode: c.LangCode,
				Video:    videoDoc,
			}
			for _, t := range c.Tracks {
				if !yield(Document(t, captionDoc)) {
					return
				}
			}
		}
	}
}

// Document builds the search document of one track
func Document(t *model.Track, caption model.CaptionDoc) model.Document {
	return model.Document{
		ID:       t.ID,
		Start:    t.Start,
		Duration: t.Duration,
		Content:  t.Content,
		PrevID:   t.PrevID,
		NextID:   t.NextID,
		Context:  t.Context,
		Caption:  caption,
	}
}

// VideoDoc builds the denormalized video attributes, channel included.
// Likes and dislikes are each set only when positive; the ratio is set when
// either count is positive.
func VideoDoc(channel *model.Channel, video *model.Video) model.VideoDoc {
	doc := model.VideoDoc{
		ID:             video.ID,
		Title:          video.Title,
		Views:          video.Views,
		PublishDate:    video.PublishDate,
		PublishDateInt: PublishDateInt(video.PublishDate),
		Category:       video.Category,
		Channel: model.ChannelDoc{
			ID:       channel.ID,
			Subs:     channel.Subs,
			LangCode: channel.LangCode,
		},
	}

	if video.Likes > 0 {
		likes := video.Likes
		doc.Likes = &likes
	}
	if video.Dislikes > 0 {
		dislikes := video.Dislikes
		doc.Dislikes = &dislikes
	}
	if total := max(video.Likes, 0) + max(video.Dislikes, 0); total > 0 {
		ratio := float64(max(video.Likes, 0)) / float64(total)
		doc.LikeRatio = &ratio
	}
	return doc
}

// PublishDateInt turns an ISO date (YYYY-MM-DD) into its YYYYMMDD integer form.
// It returns 0 when the date is not in that form.
func PublishDateInt(isoDate string) int {
	digits := strings.ReplaceAll(isoDate, "-", "")
	if len(digits) != 8 || len(isoDate) != 10 {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

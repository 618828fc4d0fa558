package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/model"
)

const defaultSize = 10

// Query selects tracks whose content or context matches Text
type Query struct {
	Text        string
	CaptionLang string
	ChannelLang string
	IsAuto      *bool
	From        int
	Size        int
}

// Track is a document with its watch link
type Track struct {
	ID string `json:"id"`
	model.Document
	URL string `json:"url"`
}

// Hit is one match with its neighbouring tracks
type Hit struct {
	Score      float64             `json:"score"`
	Tracks     []Track             `json:"tracks"` // previous, matched, next (when present)
	Matched    int                 `json:"matched"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}

// Result is one page of hits
type Result struct {
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// WatchURL links to start seconds into the video
func WatchURL(videoID string, start float64) string {
	return fmt.Sprintf("https://youtu.be/%s?t=%d", videoID, int(start))
}

func (q Query) build() (query.Query, error) {
	if q.Text == "" {
		return nil, errors.New(errors.CodeInvalidArg, "query text is empty")
	}

	content := bleve.NewMatchQuery(q.Text)
	content.SetField(FieldContent)
	surrounding := bleve.NewMatchQuery(q.Text)
	surrounding.SetField(FieldContext)

	must := []query.Query{bleve.NewDisjunctionQuery(content, surrounding)}
	if q.CaptionLang != "" {
		t := bleve.NewTermQuery(q.CaptionLang)
		t.SetField(FieldCaptionLang)
		must = append(must, t)
	}
	if q.ChannelLang != "" {
		t := bleve.NewTermQuery(q.ChannelLang)
		t.SetField(FieldChannelLang)
		must = append(must, t)
	}
	if q.IsAuto != nil {
		b := bleve.NewBoolFieldQuery(*q.IsAuto)
		b.SetField(FieldCaptionIsAuto)
		must = append(must, b)
	}
	return bleve.NewConjunctionQuery(must...), nil
}

// Search runs q and expands each hit with its previous and next track
func (i *Index) Search(ctx context.Context, q Query) (*Result, error) {
	bq, err := q.build()
	if err != nil {
		return nil, err
	}
	size := q.Size
	if size <= 0 {
		size = defaultSize
	}

	req := bleve.NewSearchRequestOptions(bq, size, max(q.From, 0), false)
	req.Fields = []string{"*"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField(FieldContent)

	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "search failed")
	}

	matched := make([]model.Document, len(res.Hits))
	var neighbourIDs []string
	for n, hit := range res.Hits {
		doc := documentFromFields(hit.ID, hit.Fields)
		matched[n] = doc
		if doc.PrevID != nil {
			neighbourIDs = append(neighbourIDs, *doc.PrevID)
		}
		if doc.NextID != nil {
			neighbourIDs = append(neighbourIDs, *doc.NextID)
		}
	}

	neighbours, err := i.Get(ctx, neighbourIDs...)
	if err != nil {
		return nil, err
	}

	result := &Result{Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for n, hit := range res.Hits {
		doc := matched[n]
		h := Hit{Score: hit.Score, Highlights: hit.Fragments}
		if doc.PrevID != nil {
			if prev, ok := neighbours[*doc.PrevID]; ok {
				h.Tracks = append(h.Tracks, withURL(prev))
			}
		}
		h.Matched = len(h.Tracks)
		h.Tracks = append(h.Tracks, withURL(doc))
		if doc.NextID != nil {
			if next, ok := neighbours[*doc.NextID]; ok {
				h.Tracks = append(h.Tracks, withURL(next))
			}
		}
		result.Hits = append(result.Hits, h)
	}
	return result, nil
}

func withURL(doc model.Document) Track {
	return Track{ID: doc.ID, Document: doc, URL: WatchURL(doc.Caption.Video.ID, doc.Start)}
}

// documentFromFields rebuilds a document from the stored fields of a hit
func documentFromFields(id string, fields map[string]interface{}) model.Document {
	f := storedFields(fields)
	return model.Document{
		ID:       id,
		Start:    f.float(FieldStart),
		Duration: f.float(FieldDuration),
		Content:  f.str(FieldContent),
		PrevID:   f.strPtr(FieldPrevID),
		NextID:   f.strPtr(FieldNextID),
		Context:  f.str(FieldContext),
		Caption: model.CaptionDoc{
			ID:       f.str(FieldCaptionID),
			IsAuto:   f.boolean(FieldCaptionIsAuto),
			LangCode: f.str(FieldCaptionLang),
			Video: model.VideoDoc{
				ID:             f.str(FieldVideoID),
				Title:          f.str(FieldVideoTitle),
				Views:          int64(f.float(FieldVideoViews)),
				PublishDate:    f.str(FieldVideoPublished),
				PublishDateInt: int(f.float(FieldVideoPublishInt)),
				Category:       f.str(FieldVideoCategory),
				Likes:          f.intPtr(FieldVideoLikes),
				Dislikes:       f.intPtr(FieldVideoDislikes),
				LikeRatio:      f.floatPtr(FieldVideoLikeRatio),
				Channel: model.ChannelDoc{
					ID:       f.str(FieldChannelID),
					Subs:     int64(f.float(FieldChannelSubs)),
					LangCode: f.str(FieldChannelLang),
				},
			},
		},
	}
}

type storedFields map[string]interface{}

func (f storedFields) str(key string) string {
	s, _ := f[key].(string)
	return s
}

func (f storedFields) strPtr(key string) *string {
	s, ok := f[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func (f storedFields) float(key string) float64 {
	v, _ := f[key].(float64)
	return v
}

func (f storedFields) floatPtr(key string) *float64 {
	v, ok := f[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

func (f storedFields) intPtr(key string) *int64 {
	v, ok := f[key].(float64)
	if !ok {
		return nil
	}
	n := int64(v)
	return &n
}

func (f storedFields) boolean(key string) bool {
	b, _ := f[key].(bool)
	return b
}

package search

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Taichi-iskw/yt-search/internal/assembler"
	"github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/linker"
	"github.com/Taichi-iskw/yt-search/internal/logger"
	"github.com/Taichi-iskw/yt-search/internal/model"
)

func newIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewInMemory(logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

// channelDocuments builds the documents of one video of channelID with a
// manual and an automatic caption
func channelDocuments(t *testing.T, channelID, videoID, channelLang string) []model.Document {
	t.Helper()

	l := linker.New(linker.DefaultWindow)
	manual, err := l.Link(videoID+"|manual|en", []model.RawSegment{
		{SequenceIndex: 0, Start: 0, Duration: 2, Text: "apple orchard"},
		{SequenceIndex: 1, Start: 2, Duration: 2, Text: "banana split"},
		{SequenceIndex: 2, Start: 4.7, Duration: 2, Text: "cherry pie"},
	})
	require.NoError(t, err)
	auto, err := l.Link(videoID+"|auto|ko", []model.RawSegment{
		{SequenceIndex: 0, Start: 10, Duration: 1, Text: "banana bread"},
	})
	require.NoError(t, err)

	channel := &model.Channel{ID: channelID, Subs: 100, LangCode: channelLang}
	video := &model.Video{ID: videoID, ChannelID: channelID, Title: "fruit", PublishDate: "2021-05-06", Views: 42, Likes: 9, Dislikes: 1}
	captions := []*model.Caption{
		{ID: videoID + "|manual|en", VideoID: videoID, Type: model.CaptionManual, LangCode: "en", Tracks: manual},
		{ID: videoID + "|auto|ko", VideoID: videoID, Type: model.CaptionAuto, LangCode: "ko", Tracks: auto},
	}
	return slices.Collect(assembler.Documents(channel, video, captions))
}

func indexAll(t *testing.T, idx *Index, docs []model.Document) {
	t.Helper()
	actions := make([]model.IndexAction, len(docs))
	for i := range docs {
		actions[i] = model.IndexAction{Op: model.IndexOpIndex, ID: docs[i].ID, Document: &docs[i]}
	}
	require.NoError(t, idx.Bulk(context.Background(), actions))
}

func TestIndex_BulkAndGet(t *testing.T) {
	idx := newIndex(t)
	docs := channelDocuments(t, "UC1", "vid1", "en")
	indexAll(t, idx, docs)

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	got, err := idx.Get(context.Background(), "vid1|manual|en|000001", "missing")
	require.NoError(t, err)
	require.Len(t, got, 1)

	doc := got["vid1|manual|en|000001"]
	assert.Equal(t, docs[1], doc)
	assert.Equal(t, "banana split", doc.Content)
	assert.Equal(t, "apple orchard banana split cherry pie", doc.Context)
	require.NotNil(t, doc.Caption.Video.Likes)
	assert.Equal(t, int64(9), *doc.Caption.Video.Likes)
	assert.Equal(t, 20210506, doc.Caption.Video.PublishDateInt)
}

func TestIndex_ReindexReplaces(t *testing.T) {
	idx := newIndex(t)
	docs := channelDocuments(t, "UC1", "vid1", "en")
	indexAll(t, idx, docs)
	indexAll(t, idx, docs)

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(docs)), count)
}

func TestIndex_BulkInvalidActions(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()

	err := idx.Bulk(ctx, []model.IndexAction{{Op: model.IndexOpIndex, ID: "x"}})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidArg))

	err = idx.Bulk(ctx, []model.IndexAction{{Op: "upsert", ID: "x"}})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidArg))

	assert.NoError(t, idx.Bulk(ctx, nil))
}

func TestIndex_DeleteByChannel(t *testing.T) {
	idx := newIndex(t)
	indexAll(t, idx, channelDocuments(t, "UC1", "vid1", "en"))
	indexAll(t, idx, channelDocuments(t, "UC2", "vid2", "ko"))

	deleted, err := idx.DeleteByChannel(context.Background(), "UC1")
	require.NoError(t, err)
	assert.Equal(t, 4, deleted)

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	got, err := idx.Get(context.Background(), "vid1|manual|en|000000", "vid2|manual|en|000000")
	require.NoError(t, err)
	assert.NotContains(t, got, "vid1|manual|en|000000")
	assert.Contains(t, got, "vid2|manual|en|000000")

	deleted, err = idx.DeleteByChannel(context.Background(), "UC404")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestIndex_Search(t *testing.T) {
	idx := newIndex(t)
	indexAll(t, idx, channelDocuments(t, "UC1", "vid1", "en"))
	indexAll(t, idx, channelDocuments(t, "UC2", "vid2", "ko"))
	ctx := context.Background()

	t.Run("hit expanded with neighbours", func(t *testing.T) {
		yes := false
		res, err := idx.Search(ctx, Query{Text: "cherry", CaptionLang: "en", ChannelLang: "en", IsAuto: &yes})
		require.NoError(t, err)
		require.NotEmpty(t, res.Hits)

		var top *Hit
		for n := range res.Hits {
			h := &res.Hits[n]
			if h.Tracks[h.Matched].ID == "vid1|manual|en|000002" {
				top = h
			}
		}
		require.NotNil(t, top, "matched track not found")
		require.Len(t, top.Tracks, 2)
		assert.Equal(t, 1, top.Matched)
		assert.Equal(t, "vid1|manual|en|000001", top.Tracks[0].ID)
		assert.Equal(t, "https://youtu.be/vid1?t=4", top.Tracks[1].URL)
		assert.Equal(t, "https://youtu.be/vid1?t=2", top.Tracks[0].URL)
	})

	t.Run("filters", func(t *testing.T) {
		auto := true
		res, err := idx.Search(ctx, Query{Text: "banana", IsAuto: &auto})
		require.NoError(t, err)
		require.Len(t, res.Hits, 2)
		for _, h := range res.Hits {
			m := h.Tracks[h.Matched]
			assert.True(t, m.Caption.IsAuto)
			assert.Equal(t, "ko", m.Caption.LangCode)
			require.Len(t, h.Tracks, 1)
		}

		res, err = idx.Search(ctx, Query{Text: "banana", ChannelLang: "ko", CaptionLang: "en"})
		require.NoError(t, err)
		for _, h := range res.Hits {
			m := h.Tracks[h.Matched]
			assert.Equal(t, "UC2", m.Caption.Video.Channel.ID)
			assert.Equal(t, "en", m.Caption.LangCode)
		}
		assert.NotEmpty(t, res.Hits)
	})

	t.Run("context matches neighbours", func(t *testing.T) {
		res, err := idx.Search(ctx, Query{Text: "orchard", ChannelLang: "en", Size: 10})
		require.NoError(t, err)
		ids := make([]string, 0, len(res.Hits))
		for _, h := range res.Hits {
			ids = append(ids, h.Tracks[h.Matched].ID)
		}
		assert.ElementsMatch(t, []string{"vid1|manual|en|000000", "vid1|manual|en|000001"}, ids)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := idx.Search(ctx, Query{})
		assert.True(t, errors.HasCode(err, errors.CodeInvalidArg))
	})
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://youtu.be/abc?t=0", WatchURL("abc", 0.9))
	assert.Equal(t, "https://youtu.be/abc?t=125", WatchURL("abc", 125.2))
}

package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Field paths of the document mapping
const (
	FieldContent         = "content"
	FieldContext         = "context"
	FieldStart           = "start"
	FieldDuration        = "duration"
	FieldPrevID          = "prev_id"
	FieldNextID          = "next_id"
	FieldCaptionID       = "caption.id"
	FieldCaptionIsAuto   = "caption.is_auto"
	FieldCaptionLang     = "caption.lang_code"
	FieldVideoID         = "caption.video.id"
	FieldVideoTitle      = "caption.video.title"
	FieldVideoViews      = "caption.video.views"
	FieldVideoPublished  = "caption.video.publish_date"
	FieldVideoPublishInt = "caption.video.publish_date_int"
	FieldVideoCategory   = "caption.video.category"
	FieldVideoLikes      = "caption.video.likes"
	FieldVideoDislikes   = "caption.video.dislikes"
	FieldVideoLikeRatio  = "caption.video.like_ratio"
	FieldChannelID       = "caption.video.channel.id"
	FieldChannelSubs     = "caption.video.channel.subs"
	FieldChannelLang     = "caption.video.channel.lang_code"
)

// NewMapping returns the index mapping of search documents.
// Identifiers and language codes are keywords, text fields are analyzed and
// every field is stored so documents can be rebuilt from hits.
func NewMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name

	keyword := bleve.NewKeywordFieldMapping()
	numeric := bleve.NewNumericFieldMapping()
	boolean := bleve.NewBooleanFieldMapping()

	channel := bleve.NewDocumentMapping()
	channel.AddFieldMappingsAt("id", keyword)
	channel.AddFieldMappingsAt("subs", numeric)
	channel.AddFieldMappingsAt("lang_code", keyword)

	video := bleve.NewDocumentMapping()
	video.AddFieldMappingsAt("id", keyword)
	video.AddFieldMappingsAt("title", text)
	video.AddFieldMappingsAt("views", numeric)
	video.AddFieldMappingsAt("publish_date", keyword)
	video.AddFieldMappingsAt("publish_date_int", numeric)
	video.AddFieldMappingsAt("category", keyword)
	video.AddFieldMappingsAt("likes", numeric)
	video.AddFieldMappingsAt("dislikes", numeric)
	video.AddFieldMappingsAt("like_ratio", numeric)
	video.AddSubDocumentMapping("channel", channel)

	caption := bleve.NewDocumentMapping()
	caption.AddFieldMappingsAt("id", keyword)
	caption.AddFieldMappingsAt("is_auto", boolean)
	caption.AddFieldMappingsAt("lang_code", keyword)
	caption.AddSubDocumentMapping("video", video)

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldStart, numeric)
	doc.AddFieldMappingsAt(FieldDuration, numeric)
	doc.AddFieldMappingsAt(FieldContent, text)
	doc.AddFieldMappingsAt(FieldContext, text)
	doc.AddFieldMappingsAt(FieldPrevID, keyword)
	doc.AddFieldMappingsAt(FieldNextID, keyword)
	doc.AddSubDocumentMapping("caption", caption)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = standard.Name
	return m
}

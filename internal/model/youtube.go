package model

// CaptionType distinguishes human-authored from speech-recognition captions
type CaptionType string

const (
	CaptionManual CaptionType = "manual"
	CaptionAuto   CaptionType = "auto"
)

// Channel represents YouTube channel information
type Channel struct {
	ID       string   `json:"id" bson:"_id"`
	URL      string   `json:"url" bson:"url"`
	Title    string   `json:"title" bson:"title"`
	Subs     int64    `json:"subs" bson:"subs"`
	LangCode string   `json:"lang_code" bson:"lang_code"`
	VideoIDs []string `json:"vid_id_list" bson:"vid_id_list"` // listing order from the source
}

// Video represents YouTube video information
type Video struct {
	ID          string `json:"id" bson:"_id"`
	ChannelID   string `json:"channel_id" bson:"channel_id"`
	URL         string `json:"url" bson:"url"`
	Title       string `json:"title" bson:"title"`
	PublishDate string `json:"publish_date" bson:"publish_date"` // ISO date, YYYY-MM-DD
	Views       int64  `json:"views" bson:"views"`
	Likes       int64  `json:"likes" bson:"likes"`
	Dislikes    int64  `json:"dislikes" bson:"dislikes"`
	Category    string `json:"category" bson:"category"`
	LangCode    string `json:"lang_code,omitempty" bson:"lang_code,omitempty"`
}

// Caption represents one caption variant (video, type, language) of a video
type Caption struct {
	ID       string      `json:"id" bson:"_id"`
	VideoID  string      `json:"video_id" bson:"video_id"`
	Type     CaptionType `json:"caption_type" bson:"caption_type"`
	LangCode string      `json:"lang_code" bson:"lang_code"`
	URL      string      `json:"url" bson:"url"`
	Tracks   []*Track    `json:"-" bson:"-"`
}

// IsAuto reports whether the caption was machine generated
func (c *Caption) IsAuto() bool {
	return c.Type == CaptionAuto
}

// Track represents one linked transcript segment of a caption
type Track struct {
	ID            string  `json:"id" bson:"_id"`
	CaptionID     string  `json:"caption_id" bson:"caption_id"`
	SequenceIndex int     `json:"sequence_index" bson:"sequence_index"`
	Start         float64 `json:"start" bson:"start"`       // seconds
	Duration      float64 `json:"duration" bson:"duration"` // seconds, 0 when the source omits it
	Content       string  `json:"content" bson:"content"`
	PrevID        *string `json:"prev_id" bson:"prev_id"`
	NextID        *string `json:"next_id" bson:"next_id"`
	Context       string  `json:"context" bson:"context"`
}

// RawSegment is a decoded, not yet linked, timed-text segment
type RawSegment struct {
	SequenceIndex int
	Start         float64
	Duration      float64
	Text          string
}

// CaptionFormat is one downloadable rendition of a caption variant
type CaptionFormat struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

// CaptionIndex maps a language code to the available renditions
type CaptionIndex map[string][]CaptionFormat

// VideoMetadata is the validated per-video record supplied by the scraper
type VideoMetadata struct {
	Video             Video
	Subtitles         CaptionIndex
	AutomaticCaptions CaptionIndex
}

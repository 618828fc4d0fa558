package model

// ChannelDoc holds the channel attributes denormalized into every document
type ChannelDoc struct {
	ID       string `json:"id"`
	Subs     int64  `json:"subs"`
	LangCode string `json:"lang_code"`
}

// VideoDoc holds the video attributes denormalized into every document.
// Likes, Dislikes and LikeRatio are nil when not applicable.
type VideoDoc struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Views          int64      `json:"views"`
	PublishDate    string     `json:"publish_date"`
	PublishDateInt int        `json:"publish_date_int"`
	Category       string     `json:"category"`
	Likes          *int64     `json:"likes,omitempty"`
	Dislikes       *int64     `json:"dislikes,omitempty"`
	LikeRatio      *float64   `json:"like_ratio,omitempty"`
	Channel        ChannelDoc `json:"channel"`
}

// CaptionDoc holds the caption attributes denormalized into every document
type CaptionDoc struct {
	ID       string   `json:"id"`
	IsAuto   bool     `json:"is_auto"`
	LangCode string   `json:"lang_code"`
	Video    VideoDoc `json:"video"`
}

// Document is one flat, self-contained search document (one per track)
type Document struct {
	ID       string     `json:"-"`
	Start    float64    `json:"start"`
	Duration float64    `json:"duration"`
	Content  string     `json:"content"`
	PrevID   *string    `json:"prev_id,omitempty"`
	NextID   *string    `json:"next_id,omitempty"`
	Context  string     `json:"context"`
	Caption  CaptionDoc `json:"caption"`
}

// IndexOp is a bulk index operation
type IndexOp string

const (
	IndexOpIndex  IndexOp = "index"
	IndexOpDelete IndexOp = "delete"
)

// IndexAction is one entry of a bulk index request. Document is nil for deletes.
type IndexAction struct {
	Op       IndexOp
	ID       string
	Document *Document
}

package ingest

import (
	"sync"

	"github.com/Taichi-iskw/yt-search/internal/upsert"
)

// Report summarizes one channel run
type Report struct {
	RunID     string `json:"run_id"`
	ChannelID string `json:"channel_id"`
	Lang      string `json:"lang"`

	VideosListed     int `json:"videos_listed"`
	VideosProcessed  int `json:"videos_processed"`
	VideosSkipped    int `json:"videos_skipped"`
	CaptionsStored   int `json:"captions_stored"`
	TracksStored     int `json:"tracks_stored"`
	DocumentsIndexed int `json:"documents_indexed"`
	Overwrites       int `json:"overwrites"`

	Reset    ResetReport `json:"reset"`
	Warnings []string    `json:"warnings"`
}

// ResetReport counts what a channel reset removed
type ResetReport struct {
	Documents int   `json:"documents"`
	Videos    int64 `json:"videos"`
	Captions  int64 `json:"captions"`
	Tracks    int64 `json:"tracks"`
}

// videoReport is the outcome of one video, merged into the run report
type videoReport struct {
	processed bool
	captions  upsert.Report
	tracks    upsert.Report
	documents upsert.Report
	video     upsert.Report
	warnings  []string
}

// collector merges video reports from concurrent workers
type collector struct {
	mu     sync.Mutex
	report *Report
}

func (c *collector) add(v videoReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.report
	if v.processed {
		r.VideosProcessed++
	} else {
		r.VideosSkipped++
	}
	r.CaptionsStored += v.captions.Stored + v.captions.Overwritten
	r.TracksStored += v.tracks.Stored + v.tracks.Overwritten
	r.DocumentsIndexed += v.documents.Stored
	r.Overwrites += v.video.Overwritten + v.captions.Overwritten + v.tracks.Overwritten
	r.Warnings = append(r.Warnings, v.warnings...)
}

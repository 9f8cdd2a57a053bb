// Package export renders a scenario's generated clips as an edit decision
// list that editors can import as a rough cut.
package export

import "time"

const (
	// DefaultClipDuration is the length of one generated scene video.
	DefaultClipDuration = 8 * time.Second
	DefaultFrameRate    = 30.0
)

// Clip is one event on the timeline. StartMs and EndMs are source in/out
// points inside the media file.
type Clip struct {
	Name      string
	MediaPath string
	StartMs   int
	EndMs     int
	Scene     int
}

// Timeline is an ordered list of clips laid back to back.
type Timeline struct {
	Title     string
	FrameRate float64
	Clips     []Clip
}

func (t Timeline) DurationMs() int {
	total := 0
	for _, c := range t.Clips {
		total += c.EndMs - c.StartMs
	}
	return total
}

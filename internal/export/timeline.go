package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/heimdex/storyboard-agent/internal/storyboard"
)

// FromScenario lays out the scenes that have a generated video, in scene
// order. Media paths point at the local mirror under mediaRoot.
func FromScenario(s *storyboard.Scenario, mediaRoot string, clipDuration time.Duration) Timeline {
	if clipDuration <= 0 {
		clipDuration = DefaultClipDuration
	}

	title := SanitizeName(s.Scenario, 60)
	if title == "" {
		title = "storyboard"
	}

	t := Timeline{Title: title, FrameRate: DefaultFrameRate}
	for i, sc := range s.Scenes {
		if sc.FileName == "" {
			continue
		}
		name := SanitizeName(sc.Description, 80)
		if name == "" {
			name = fmt.Sprintf("Scene %d", i+1)
		}
		t.Clips = append(t.Clips, Clip{
			Name:      name,
			MediaPath: filepath.Join(mediaRoot, filepath.FromSlash(sc.FileName)),
			StartMs:   0,
			EndMs:     int(clipDuration.Milliseconds()),
			Scene:     i,
		})
	}
	return t
}

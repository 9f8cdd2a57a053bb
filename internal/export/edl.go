package export

import (
	"fmt"
	"math"
	"strings"
)

// GenerateEDL renders t as a CMX3600 style EDL with one video event per clip.
func GenerateEDL(t Timeline) string {
	fps := int(math.Round(t.FrameRate))
	if fps <= 0 {
		fps = int(DefaultFrameRate)
	}

	fcm := "NON-DROP FRAME"
	if isDropFrame(t.FrameRate) {
		fcm = "DROP FRAME"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", t.Title)
	fmt.Fprintf(&b, "FCM: %s\n\n", fcm)

	recordMs := 0
	for i, c := range t.Clips {
		length := c.EndMs - c.StartMs
		fmt.Fprintf(&b, "%03d  %-8s %-5s C        %s %s %s %s\n", i+1, "AX", "V",
			timecode(c.StartMs, fps), timecode(c.EndMs, fps),
			timecode(recordMs, fps), timecode(recordMs+length, fps))
		fmt.Fprintf(&b, "* FROM CLIP NAME:  %s\n", c.Name)
		fmt.Fprintf(&b, "* MEDIA PATH:  %s\n", c.MediaPath)
		recordMs += length
	}

	return b.String()
}

func isDropFrame(rate float64) bool {
	return math.Abs(rate-29.97) < 0.01 || math.Abs(rate-59.94) < 0.01
}

func timecode(ms int, fps int) string {
	frames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	secs := frames / fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60, frames%fps)
}

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/heimdex/storyboard-agent/internal/storyboard"
)

func TestGenerateEDL_SingleClip(t *testing.T) {
	edl := GenerateEDL(Timeline{
		Title:     "Project One",
		FrameRate: 30,
		Clips:     []Clip{{Name: "Intro", MediaPath: "/public/videos/1.mp4", StartMs: 0, EndMs: 8000}},
	})

	for _, want := range []string{
		"TITLE: Project One",
		"FCM: NON-DROP FRAME",
		"001  AX       V     C        00:00:00:00 00:00:08:00 00:00:00:00 00:00:08:00",
		"* FROM CLIP NAME:  Intro",
		"* MEDIA PATH:  /public/videos/1.mp4",
	} {
		if !strings.Contains(edl, want) {
			t.Errorf("EDL missing %q:\n%s", want, edl)
		}
	}
}

func TestGenerateEDL_RecordOffsetAccumulates(t *testing.T) {
	edl := GenerateEDL(Timeline{
		Title:     "Multi",
		FrameRate: 30,
		Clips: []Clip{
			{Name: "A", MediaPath: "/a.mp4", StartMs: 0, EndMs: 8000},
			{Name: "B", MediaPath: "/b.mp4", StartMs: 0, EndMs: 8000},
		},
	})

	if !strings.Contains(edl, "002  AX       V     C        00:00:00:00 00:00:08:00 00:00:08:00 00:00:16:00") {
		t.Fatalf("second event line mismatch:\n%s", edl)
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	edl := GenerateEDL(Timeline{Title: "Drop", FrameRate: 29.97})
	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Fatalf("expected drop frame FCM, got: %q", edl)
	}
}

func TestTimecode(t *testing.T) {
	tests := []struct {
		name string
		ms   int
		fps  int
		want string
	}{
		{name: "zero", ms: 0, fps: 30, want: "00:00:00:00"},
		{name: "one second", ms: 1000, fps: 30, want: "00:00:01:00"},
		{name: "fractional second", ms: 500, fps: 30, want: "00:00:00:15"},
		{name: "one minute", ms: 60000, fps: 30, want: "00:01:00:00"},
		{name: "one hour", ms: 3600000, fps: 30, want: "01:00:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := timecode(tc.ms, tc.fps); got != tc.want {
				t.Fatalf("timecode(%d, %d) = %q, want %q", tc.ms, tc.fps, got, tc.want)
			}
		})
	}
}

func TestFromScenario(t *testing.T) {
	s := &storyboard.Scenario{
		Scenario: "Robot & dog",
		Scenes: []storyboard.Scene{
			{Description: "They meet", FileName: "videos/1/sample_0.mp4"},
			{Description: "No video yet"},
			{FileName: "videos/3/sample_0.mp4"},
		},
	}

	tl := FromScenario(s, "/srv/public", 0)

	if tl.Title != "Robot _ dog" {
		t.Errorf("Title = %q", tl.Title)
	}
	if len(tl.Clips) != 2 {
		t.Fatalf("len(Clips) = %d, want 2", len(tl.Clips))
	}
	if tl.Clips[0].Name != "They meet" || tl.Clips[0].EndMs != 8000 {
		t.Errorf("Clips[0] = %+v", tl.Clips[0])
	}
	if tl.Clips[1].Name != "Scene 3" || tl.Clips[1].Scene != 2 {
		t.Errorf("Clips[1] = %+v", tl.Clips[1])
	}
	if want := filepath.Join("/srv/public", "videos", "3", "sample_0.mp4"); tl.Clips[1].MediaPath != want {
		t.Errorf("MediaPath = %q, want %q", tl.Clips[1].MediaPath, want)
	}
	if tl.DurationMs() != 16000 {
		t.Errorf("DurationMs() = %d, want 16000", tl.DurationMs())
	}

	if got := FromScenario(s, "/p", 5*time.Second); got.Clips[0].EndMs != 5000 {
		t.Errorf("custom duration EndMs = %d, want 5000", got.Clips[0].EndMs)
	}
}

func TestWriteEDL(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteEDL(dir, Timeline{Title: "cut", FrameRate: 30})
	if err != nil {
		t.Fatalf("WriteEDL() error = %v", err)
	}
	if path != filepath.Join(dir, "cut.edl") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "TITLE: cut\n") {
		t.Errorf("file content = %q", data)
	}

	if _, err := WriteEDL(filepath.Join(dir, "missing"), Timeline{Title: "x"}); err == nil {
		t.Error("WriteEDL() into a missing directory should fail")
	}
}

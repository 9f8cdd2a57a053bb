package vertex

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"google.golang.org/genai"
)

func testVideoClient(poll func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)) *Client {
	return &Client{
		cfg:       Config{PollInterval: time.Millisecond},
		logger:    slog.New(slog.DiscardHandler),
		pollVideo: poll,
	}
}

func pendingOperation(name string) *Operation {
	return &Operation{Name: name, raw: &genai.GenerateVideosOperation{Name: name}}
}

func TestWaitVideo_DoneAfterPolls(t *testing.T) {
	polls := 0
	c := testVideoClient(func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		polls++
		if polls < 3 {
			return &genai.GenerateVideosOperation{Name: op.Name}, nil
		}
		return &genai.GenerateVideosOperation{
			Name: op.Name,
			Done: true,
			Response: &genai.GenerateVideosResponse{
				GeneratedVideos: []*genai.GeneratedVideo{{Video: &genai.Video{URI: "gs://b/videos/7/sample_0.mp4"}}},
			},
		}, nil
	})

	handle := pendingOperation("operations/7")
	uri, err := c.WaitVideo(context.Background(), handle)
	if err != nil {
		t.Fatalf("WaitVideo() error = %v", err)
	}
	if uri != "gs://b/videos/7/sample_0.mp4" {
		t.Errorf("WaitVideo() = %q", uri)
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
	if !handle.raw.Done {
		t.Error("handle should carry the finished operation")
	}
}

func TestWaitVideo_AlreadyDoneSkipsPolling(t *testing.T) {
	c := testVideoClient(func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		t.Fatal("finished operation should not be polled")
		return nil, nil
	})

	handle := &Operation{Name: "operations/1", raw: &genai.GenerateVideosOperation{
		Done: true,
		Response: &genai.GenerateVideosResponse{
			GeneratedVideos: []*genai.GeneratedVideo{{Video: &genai.Video{URI: "gs://b/videos/1/sample_0.mp4"}}},
		},
	}}
	if _, err := c.WaitVideo(context.Background(), handle); err != nil {
		t.Fatalf("WaitVideo() error = %v", err)
	}
}

func TestWaitVideo_DeadlineWhilePending(t *testing.T) {
	polls := 0
	c := testVideoClient(func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		polls++
		return &genai.GenerateVideosOperation{Name: op.Name}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.WaitVideo(ctx, pendingOperation("operations/slow"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitVideo() error = %v, want deadline exceeded", err)
	}
	var rc *RemoteCallError
	if errors.As(err, &rc) {
		t.Errorf("deadline should not be reported as a remote failure: %v", err)
	}
	if polls == 0 {
		t.Error("operation should have been polled before the deadline")
	}
}

func TestWaitVideo_PollErrorIsRemote(t *testing.T) {
	c := testVideoClient(func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		return nil, errors.New("503 backend unavailable")
	})

	_, err := c.WaitVideo(context.Background(), pendingOperation("operations/9"))
	var rc *RemoteCallError
	if !errors.As(err, &rc) {
		t.Fatalf("WaitVideo() error = %v, want RemoteCallError", err)
	}
	if rc.Op != "poll video operation" {
		t.Errorf("Op = %q", rc.Op)
	}
}

func TestWaitVideo_NilHandle(t *testing.T) {
	c := testVideoClient(nil)
	if _, err := c.WaitVideo(context.Background(), nil); err == nil {
		t.Fatal("WaitVideo(nil) expected error")
	}
}

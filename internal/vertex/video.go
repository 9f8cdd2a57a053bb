package vertex

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// StartVideo submits an image-to-video generation and returns its handle.
func (c *Client) StartVideo(ctx context.Context, prompt, imageBase64 string) (*Operation, error) {
	data, mimeType, err := decodeImage(imageBase64)
	if err != nil {
		return nil, err
	}

	op, err := c.genai.Models.GenerateVideos(ctx, c.cfg.VideoModel, prompt,
		&genai.Image{ImageBytes: data, MIMEType: mimeType},
		&genai.GenerateVideosConfig{
			NumberOfVideos: 1,
			OutputGCSURI:   c.outputURI("videos"),
		},
	)
	if err != nil {
		return nil, &RemoteCallError{Op: "generate video", Err: err}
	}

	c.logger.Debug("video operation started", "operation", op.Name)
	return &Operation{Name: op.Name, raw: op}, nil
}

// WaitVideo polls the operation every PollInterval. Cancellation and the
// deadline come from ctx.
func (c *Client) WaitVideo(ctx context.Context, handle *Operation) (string, error) {
	if handle == nil || handle.raw == nil {
		return "", fmt.Errorf("wait video: nil operation")
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	op := handle.raw
	for !op.Done {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("video operation %s: %w", handle.Name, ctx.Err())
		case <-ticker.C:
		}

		next, err := c.pollVideo(ctx, op)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("video operation %s: %w", handle.Name, ctx.Err())
			}
			return "", &RemoteCallError{Op: "poll video operation", Err: err}
		}
		op = next
		handle.raw = op
		c.logger.Debug("video operation polled", "operation", handle.Name, "done", op.Done)
	}

	return videoURI(op)
}

// videoURI extracts the storage URI of the first generated sample from a
// finished operation.
func videoURI(op *genai.GenerateVideosOperation) (string, error) {
	if len(op.Error) > 0 {
		msg, _ := op.Error["message"].(string)
		if msg == "" {
			msg = fmt.Sprintf("%v", op.Error)
		}
		return "", &RemoteCallError{Op: "generate video", Err: errors.New(msg)}
	}

	resp := op.Response
	if resp == nil || len(resp.GeneratedVideos) == 0 {
		if resp != nil && resp.RAIMediaFilteredCount > 0 {
			return "", &ContentFilteredError{Reason: strings.Join(resp.RAIMediaFilteredReasons, "; ")}
		}
		return "", &RemoteCallError{Op: "generate video", Err: errors.New("no video returned")}
	}

	sample := resp.GeneratedVideos[0]
	if sample == nil || sample.Video == nil || sample.Video.URI == "" {
		return "", &RemoteCallError{Op: "generate video", Err: errors.New("video has no storage uri")}
	}
	return sample.Video.URI, nil
}

// decodeImage accepts raw base64 or a data URL and sniffs the MIME type.
func decodeImage(imageBase64 string) ([]byte, string, error) {
	payload := imageBase64
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx != -1 {
			payload = payload[idx+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, "", fmt.Errorf("invalid image payload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("invalid image payload: empty")
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/png"
	}
	return data, mimeType, nil
}

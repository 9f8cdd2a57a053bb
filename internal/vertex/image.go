package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenerateImage renders a single image into the output bucket.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error) {
	resp, err := c.genai.Models.GenerateImages(ctx, c.cfg.ImageModel, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		AspectRatio:      req.AspectRatio,
		IncludeRAIReason: true,
		OutputGCSURI:     c.outputURI("images"),
	})
	if err != nil {
		return ImageResult{}, &RemoteCallError{Op: "generate image", Err: err}
	}
	return firstImage("generate image", resp.GeneratedImages)
}

// CustomizeImage renders a scene image that references subject images. Each
// subject is tagged in the prompt with its reference id.
func (c *Client) CustomizeImage(ctx context.Context, prompt string, subjects []SubjectReference) (ImageResult, error) {
	if len(subjects) == 0 {
		return ImageResult{}, fmt.Errorf("customize image: at least one subject is required")
	}

	refs := make([]genai.ReferenceImage, 0, len(subjects))
	for i, s := range subjects {
		refs = append(refs, genai.NewSubjectReferenceImage(
			&genai.Image{GCSURI: s.GCSURI, MIMEType: "image/png"},
			int32(i+1),
			&genai.SubjectReferenceConfig{
				SubjectType:        genai.SubjectReferenceTypeSubjectTypePerson,
				SubjectDescription: s.Description,
			},
		))
	}

	resp, err := c.genai.Models.EditImage(ctx, c.cfg.CustomizationModel, customizationPrompt(prompt, subjects), refs, &genai.EditImageConfig{
		NumberOfImages:   1,
		IncludeRAIReason: true,
		OutputGCSURI:     c.outputURI("images"),
	})
	if err != nil {
		return ImageResult{}, &RemoteCallError{Op: "customize image", Err: err}
	}
	return firstImage("customize image", resp.GeneratedImages)
}

func customizationPrompt(prompt string, subjects []SubjectReference) string {
	var sb strings.Builder
	sb.WriteString("Create an image about ")
	for i, s := range subjects {
		if i > 0 {
			sb.WriteString(" and ")
		}
		fmt.Fprintf(&sb, "%s [%d]", s.Description, i+1)
	}
	sb.WriteString(" to match the description: ")
	sb.WriteString(prompt)
	return sb.String()
}

// firstImage maps the first prediction to a result. A RAI filter reason on the
// prediction becomes a ContentFilteredError.
func firstImage(op string, images []*genai.GeneratedImage) (ImageResult, error) {
	if len(images) == 0 || images[0] == nil {
		return ImageResult{}, &RemoteCallError{Op: op, Err: errors.New("no image returned")}
	}
	img := images[0]
	if img.RAIFilteredReason != "" {
		return ImageResult{}, &ContentFilteredError{Reason: img.RAIFilteredReason}
	}
	if img.Image == nil || img.Image.GCSURI == "" {
		return ImageResult{}, &RemoteCallError{Op: op, Err: errors.New("image has no storage uri")}
	}
	return ImageResult{GCSURI: img.Image.GCSURI}, nil
}

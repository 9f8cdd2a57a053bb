// Package playback serves the locally mirrored video files with HTTP range
// support so browsers can seek inside a clip.
package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrOutsideRoot is returned for names that resolve outside the served root.
var ErrOutsideRoot = errors.New("path escapes public directory")

type PlaybackService interface {
	ServeFile(w http.ResponseWriter, r *http.Request, name string) error
}

// Server serves files below root.
type Server struct {
	root   string
	logger *slog.Logger
}

func NewServer(root string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{root: filepath.Clean(root), logger: logger}
}

// Resolve maps a slash separated name to a path inside the root.
func (s *Server) Resolve(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "", ErrOutsideRoot
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", ErrOutsideRoot
		}
	}
	p := filepath.Join(s.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrOutsideRoot
	}
	return p, nil
}

// ServeFile writes the named file, honoring a single byte range.
func (s *Server) ServeFile(w http.ResponseWriter, r *http.Request, name string) error {
	filePath, err := s.Resolve(name)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil
	}

	size := stat.Size()
	contentType := contentTypeFor(filePath)

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	sec, partial, err := RequestedSection(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrUnsatisfiable):
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case errors.Is(err, ErrInvalidRange):
		// A malformed header is ignored and the whole clip is sent.
		partial = false
	case err != nil:
		return err
	}

	body := io.NewSectionReader(file, 0, size)
	status := http.StatusOK
	if partial {
		body = sec.Reader(file)
		status = http.StatusPartialContent
		w.Header().Set("Content-Range", sec.ContentRange(size))
	}

	w.Header().Set("Content-Length", strconv.FormatInt(body.Size(), 10))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := io.Copy(w, body); err != nil {
		s.logger.Debug("clip transfer interrupted", "name", name, "error", err)
	}
	return nil
}

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
}

// contentTypeFor checks the video table before the system mime database.
func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := videoTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

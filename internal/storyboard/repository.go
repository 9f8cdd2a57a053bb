package storyboard

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/storyboard-agent/internal/video"
)

const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// VideoJob records one run of the Video Assembler.
type VideoJob struct {
	ID         string       `json:"id"`
	ScenarioID string       `json:"scenario_id,omitempty"`
	Status     string       `json:"status"`
	SceneCount int          `json:"scene_count"`
	Clips      []video.Clip `json:"clips,omitempty"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ScenarioSummary is the listing view of a stored scenario.
type ScenarioSummary struct {
	ID        string    `json:"id"`
	Pitch     string    `json:"pitch,omitempty"`
	Style     string    `json:"style,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	SaveScenario(ctx context.Context, s *Scenario, pitch, style string) error
	GetScenario(ctx context.Context, id string) (*Scenario, error)
	ListScenarios(ctx context.Context, limit int) ([]*ScenarioSummary, error)
	AttachClips(ctx context.Context, scenarioID string, clips []video.Clip) error

	CreateVideoJob(ctx context.Context, job *VideoJob) error
	GetVideoJob(ctx context.Context, id string) (*VideoJob, error)
	CompleteVideoJob(ctx context.Context, id string, clips []video.Clip) error
	FailVideoJob(ctx context.Context, id, errorMsg string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func NewID() string {
	return uuid.NewString()
}

// SaveScenario inserts s, assigning an ID when it has none, or replaces the
// stored copy when the ID already exists.
func (r *SQLiteRepository) SaveScenario(ctx context.Context, s *Scenario, pitch, style string) error {
	now := r.now().Truncate(time.Second)
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO scenarios (id, pitch, style, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pitch = COALESCE(excluded.pitch, scenarios.pitch),
			style = COALESCE(excluded.style, scenarios.style),
			data = excluded.data,
			updated_at = excluded.updated_at
	`, s.ID, nullString(pitch), nullString(style), string(data),
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339))
	return err
}

// GetScenario returns nil, nil when no scenario has the id.
func (r *SQLiteRepository) GetScenario(ctx context.Context, id string) (*Scenario, error) {
	var data string
	err := r.db.QueryRowContext(ctx, "SELECT data FROM scenarios WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Scenario
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario %s: %w", id, err)
	}
	s.ID = id
	return &s, nil
}

func (r *SQLiteRepository) ListScenarios(ctx context.Context, limit int) ([]*ScenarioSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pitch, style, created_at, updated_at
		FROM scenarios ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ScenarioSummary
	for rows.Next() {
		var s ScenarioSummary
		var pitch, style sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &pitch, &style, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s.Pitch = pitch.String
		s.Style = style.String
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// AttachClips records each clip's file name and URL on the scene it was
// generated from. Clips pointing past the stored scene list are ignored.
func (r *SQLiteRepository) AttachClips(ctx context.Context, scenarioID string, clips []video.Clip) error {
	s, err := r.GetScenario(ctx, scenarioID)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("scenario %s not found", scenarioID)
	}

	for _, c := range clips {
		if c.Scene < 0 || c.Scene >= len(s.Scenes) {
			continue
		}
		s.Scenes[c.Scene].FileName = c.FileName
		s.Scenes[c.Scene].VideoURL = c.URL
	}
	return r.SaveScenario(ctx, s, "", "")
}

func (r *SQLiteRepository) CreateVideoJob(ctx context.Context, j *VideoJob) error {
	now := r.now().Truncate(time.Second)
	if j.ID == "" {
		j.ID = NewID()
	}
	if j.Status == "" {
		j.Status = JobStatusRunning
	}
	j.CreatedAt = now
	j.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO video_jobs (id, scenario_id, status, scene_count, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, j.ID, nullString(j.ScenarioID), j.Status, j.SceneCount, nullString(j.Error),
		j.CreatedAt.Format(time.RFC3339), j.UpdatedAt.Format(time.RFC3339))
	return err
}

// GetVideoJob returns nil, nil when no job has the id.
func (r *SQLiteRepository) GetVideoJob(ctx context.Context, id string) (*VideoJob, error) {
	var j VideoJob
	var scenarioID, clips, errMsg sql.NullString
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, scenario_id, status, scene_count, clips, error, created_at, updated_at
		FROM video_jobs WHERE id = ?
	`, id).Scan(&j.ID, &scenarioID, &j.Status, &j.SceneCount, &clips, &errMsg, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	j.ScenarioID = scenarioID.String
	j.Error = errMsg.String
	if clips.Valid {
		if err := json.Unmarshal([]byte(clips.String), &j.Clips); err != nil {
			return nil, fmt.Errorf("failed to decode clips of job %s: %w", id, err)
		}
	}
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) CompleteVideoJob(ctx context.Context, id string, clips []video.Clip) error {
	data, err := json.Marshal(clips)
	if err != nil {
		return fmt.Errorf("failed to encode clips: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE video_jobs SET status = ?, clips = ?, error = NULL, updated_at = ? WHERE id = ?
	`, JobStatusCompleted, string(data), r.now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) FailVideoJob(ctx context.Context, id, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE video_jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, JobStatusFailed, nullString(errorMsg), r.now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

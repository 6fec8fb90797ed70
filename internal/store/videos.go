package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const videoColumns = "id, title, channel, niche, url, duration, views, likes, comments, status, virality_score, moments_json, error_message, created_at, updated_at"

func scanVideo(scanner interface{ Scan(dest ...any) error }) (*Video, error) {
	var (
		id            string
		title         sql.NullString
		channel       sql.NullString
		niche         sql.NullString
		url           sql.NullString
		duration      sql.NullFloat64
		views         sql.NullInt64
		likes         sql.NullInt64
		comments      sql.NullInt64
		statusStr     string
		viralityScore sql.NullFloat64
		momentsJSON   sql.NullString
		errorMessage  sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&channel,
		&niche,
		&url,
		&duration,
		&views,
		&likes,
		&comments,
		&statusStr,
		&viralityScore,
		&momentsJSON,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	video := &Video{
		ID:            id,
		Title:         title.String,
		Channel:       channel.String,
		Niche:         niche.String,
		URL:           url.String,
		Duration:      duration.Float64,
		Views:         views.Int64,
		Likes:         likes.Int64,
		Comments:      comments.Int64,
		Status:        Status(statusStr),
		ViralityScore: viralityScore.Float64,
		MomentsJSON:   momentsJSON.String,
		ErrorMessage:  errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		video.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		video.UpdatedAt = updated
	}
	return video, nil
}

// InsertVideo records a newly discovered video. Inserting a video that is
// already known is not an error; the second return value reports whether a
// row was actually created.
func (s *Store) InsertVideo(ctx context.Context, video *Video) (bool, error) {
	if video == nil || video.ID == "" {
		return false, errors.New("video id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	status := video.Status
	if status == "" {
		status = StatusDiscovered
	}
	res, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO videos (id, title, channel, niche, url, duration, views, likes, comments, status, virality_score, moments_json, error_message, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID,
		nullableString(video.Title),
		nullableString(video.Channel),
		nullableString(video.Niche),
		nullableString(video.URL),
		video.Duration,
		video.Views,
		video.Likes,
		video.Comments,
		string(status),
		video.ViralityScore,
		nullableString(video.MomentsJSON),
		nullableString(video.ErrorMessage),
		now,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("insert video: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert video rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetVideo loads a video by identifier.
func (s *Store) GetVideo(ctx context.Context, id string) (*Video, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+videoColumns+" FROM videos WHERE id = ?", id)
	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	return video, nil
}

// ListVideosByStatus returns videos in the given status ordered by discovery time.
func (s *Store) ListVideosByStatus(ctx context.Context, statuses ...Status) ([]*Video, error) {
	ctx = ensureContext(ctx)
	if len(statuses) == 0 {
		return nil, errors.New("at least one status is required")
	}
	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, string(status))
	}
	query := "SELECT " + videoColumns + " FROM videos WHERE status IN (" + makePlaceholders(len(statuses)) + ") ORDER BY created_at, id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// TransitionVideo performs a conditional status transition. It returns true
// when the video moved from the expected status to the new one, and false
// when the video was not in the expected status (another run got there first).
func (s *Store) TransitionVideo(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE videos SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		string(from),
	)
	if err != nil {
		return false, fmt.Errorf("transition video %s %s->%s: %w", id, from, to, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetVideoAnalysis persists analysis output and moves the video to analyzed.
// The transition is conditional on the video still being in discovered.
func (s *Store) SetVideoAnalysis(ctx context.Context, id string, viralityScore float64, momentsJSON string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE videos SET status = ?, virality_score = ?, moments_json = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		string(StatusAnalyzed),
		viralityScore,
		nullableString(momentsJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		string(StatusDiscovered),
	)
	if err != nil {
		return false, fmt.Errorf("set video analysis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("analysis rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkVideoFailed records a failure. Terminal videos (clips_ready or already
// failed) are left untouched.
func (s *Store) MarkVideoFailed(ctx context.Context, id, message string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE videos SET status = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND status NOT IN (?, ?)`,
		string(StatusFailed),
		nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		string(StatusClipsReady),
		string(StatusFailed),
	)
	if err != nil {
		return false, fmt.Errorf("mark video failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark failed rows affected: %w", err)
	}
	return affected > 0, nil
}

// VideoCounts aggregates per-status totals for status reporting.
func (s *Store) VideoCounts(ctx context.Context) (StatusCounts, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM videos GROUP BY status")
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count videos: %w", err)
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var statusStr string
		var n int
		if err := rows.Scan(&statusStr, &n); err != nil {
			return StatusCounts{}, fmt.Errorf("scan video counts: %w", err)
		}
		counts.Total += n
		switch Status(statusStr) {
		case StatusDiscovered:
			counts.Discovered = n
		case StatusAnalyzed:
			counts.Analyzed = n
		case StatusProcessing:
			counts.Processing = n
		case StatusClipsReady:
			counts.ClipsReady = n
		case StatusFailed:
			counts.Failed = n
		}
	}
	if err := rows.Err(); err != nil {
		return StatusCounts{}, fmt.Errorf("iterate video counts: %w", err)
	}
	return counts, nil
}

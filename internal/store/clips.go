package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const clipColumns = "id, video_id, title, moment_type, quote, start_seconds, end_seconds, virality_score, features_json, flags_json, seo_json, file_path, qa_score, qa_passed, published, published_at, created_at, updated_at"

func scanClip(scanner interface{ Scan(dest ...any) error }) (*Clip, error) {
	var (
		id            string
		videoID       string
		title         sql.NullString
		momentType    sql.NullString
		quote         sql.NullString
		startSeconds  sql.NullFloat64
		endSeconds    sql.NullFloat64
		viralityScore sql.NullFloat64
		featuresJSON  sql.NullString
		flagsJSON     sql.NullString
		seoJSON       sql.NullString
		filePath      sql.NullString
		qaScore       sql.NullFloat64
		qaPassed      sql.NullInt64
		published     sql.NullInt64
		publishedRaw  sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&videoID,
		&title,
		&momentType,
		&quote,
		&startSeconds,
		&endSeconds,
		&viralityScore,
		&featuresJSON,
		&flagsJSON,
		&seoJSON,
		&filePath,
		&qaScore,
		&qaPassed,
		&published,
		&publishedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	clip := &Clip{
		ID:            id,
		VideoID:       videoID,
		Title:         title.String,
		MomentType:    momentType.String,
		Quote:         quote.String,
		StartSeconds:  startSeconds.Float64,
		EndSeconds:    endSeconds.Float64,
		ViralityScore: viralityScore.Float64,
		FeaturesJSON:  featuresJSON.String,
		FlagsJSON:     flagsJSON.String,
		SEOJSON:       seoJSON.String,
		FilePath:      filePath.String,
		QAScore:       qaScore.Float64,
		QAPassed:      qaPassed.Int64 != 0,
		Published:     published.Int64 != 0,
	}
	if publishedRaw.Valid {
		if at, err := parseTimeString(publishedRaw.String); err == nil {
			clip.PublishedAt = &at
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		clip.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		clip.UpdatedAt = updated
	}
	return clip, nil
}

// InsertClip records a newly created clip.
func (s *Store) InsertClip(ctx context.Context, clip *Clip) error {
	if clip == nil || clip.ID == "" {
		return errors.New("clip id is required")
	}
	if clip.VideoID == "" {
		return errors.New("clip video id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO clips (id, video_id, title, moment_type, quote, start_seconds, end_seconds, virality_score, features_json, flags_json, seo_json, file_path, qa_score, qa_passed, published, published_at, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		clip.ID,
		clip.VideoID,
		nullableString(clip.Title),
		nullableString(clip.MomentType),
		nullableString(clip.Quote),
		clip.StartSeconds,
		clip.EndSeconds,
		clip.ViralityScore,
		nullableString(clip.FeaturesJSON),
		nullableString(clip.FlagsJSON),
		nullableString(clip.SEOJSON),
		nullableString(clip.FilePath),
		clip.QAScore,
		boolToInt(clip.QAPassed),
		boolToInt(clip.Published),
		nullableTime(clip.PublishedAt),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert clip: %w", err)
	}
	return nil
}

// GetClip loads a clip by identifier.
func (s *Store) GetClip(ctx context.Context, id string) (*Clip, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+clipColumns+" FROM clips WHERE id = ?", id)
	clip, err := scanClip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClipNotFound
		}
		return nil, fmt.Errorf("get clip: %w", err)
	}
	return clip, nil
}

// ListClipsByVideo returns all clips extracted from the given video.
func (s *Store) ListClipsByVideo(ctx context.Context, videoID string) ([]*Clip, error) {
	return s.queryClips(ctx, "SELECT "+clipColumns+" FROM clips WHERE video_id = ? ORDER BY created_at, id", videoID)
}

// ListUnpublishedClips returns clips that have not yet been published,
// ordered by creation time.
func (s *Store) ListUnpublishedClips(ctx context.Context) ([]*Clip, error) {
	return s.queryClips(ctx, "SELECT "+clipColumns+" FROM clips WHERE published = 0 ORDER BY created_at, id")
}

// ListClips returns every stored clip ordered by creation time.
func (s *Store) ListClips(ctx context.Context) ([]*Clip, error) {
	return s.queryClips(ctx, "SELECT "+clipColumns+" FROM clips ORDER BY created_at, id")
}

func (s *Store) queryClips(ctx context.Context, query string, args ...any) ([]*Clip, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var clips []*Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clips = append(clips, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clips: %w", err)
	}
	return clips, nil
}

// UpdateClipArtifact records the rendered media file and QA outcome for a clip.
func (s *Store) UpdateClipArtifact(ctx context.Context, id, filePath string, qaScore float64, qaPassed bool) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE clips SET file_path = ?, qa_score = ?, qa_passed = ?, updated_at = ? WHERE id = ?`,
		nullableString(filePath),
		qaScore,
		boolToInt(qaPassed),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update clip artifact: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("artifact rows affected: %w", err)
	}
	if affected == 0 {
		return ErrClipNotFound
	}
	return nil
}

// UpdateClipSEO records generated platform metadata for a clip.
func (s *Store) UpdateClipSEO(ctx context.Context, id, seoJSON string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE clips SET seo_json = ?, updated_at = ? WHERE id = ?`,
		nullableString(seoJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update clip seo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("seo rows affected: %w", err)
	}
	if affected == 0 {
		return ErrClipNotFound
	}
	return nil
}

// MarkClipPublished flips a clip to published with the given timestamp.
func (s *Store) MarkClipPublished(ctx context.Context, id string, at time.Time) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE clips SET published = 1, published_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark clip published: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("publish rows affected: %w", err)
	}
	if affected == 0 {
		return ErrClipNotFound
	}
	return nil
}

// ClipTotals aggregates clip counts for status reporting.
func (s *Store) ClipTotals(ctx context.Context) (ClipCounts, error) {
	ctx = ensureContext(ctx)
	var counts ClipCounts
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1), COALESCE(SUM(published), 0) FROM clips")
	if err := row.Scan(&counts.Total, &counts.Published); err != nil {
		return ClipCounts{}, fmt.Errorf("count clips: %w", err)
	}
	return counts, nil
}

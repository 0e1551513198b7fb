package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"genstudio/types"
)

type Video struct {
	ID           int64
	Prompt       string
	Style        string
	Duration     string
	Resolution   string
	Fps          int
	URL          string
	ThumbnailURL string
	FileSize     int64
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (v Video) HistoryItem() types.HistoryItem {
	return types.HistoryItem{
		ID:           v.ID,
		Prompt:       v.Prompt,
		Style:        v.Style,
		Resolution:   v.Resolution,
		Duration:     v.Duration,
		Fps:          v.Fps,
		VideoURL:     v.URL,
		ThumbnailURL: v.ThumbnailURL,
		FileSize:     v.FileSize,
		Status:       v.Status,
		ErrorMessage: v.ErrorMessage,
		CreatedAt:    types.NewFlexibleTime(v.CreatedAt),
		UpdatedAt:    types.NewFlexibleTime(v.UpdatedAt),
	}
}

func (s *Store) CreateVideo(ctx context.Context, v Video) (Video, error) {
	if v.Status == "" {
		v.Status = types.RecordGenerating
	}
	ts := s.stamp()
	err := s.db.QueryRowContext(ctx, s.d.rebind(`
		INSERT INTO videos (prompt, style, duration, resolution, fps, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		v.Prompt, v.Style, v.Duration, v.Resolution, v.Fps, v.Status, ts, ts,
	).Scan(&v.ID)
	if err != nil {
		return Video{}, err
	}
	v.CreatedAt = parseStamp(ts)
	v.UpdatedAt = v.CreatedAt
	return v, nil
}

func (s *Store) CompleteVideo(ctx context.Context, id int64, url, thumbnailURL string, fileSize int64) error {
	return s.exec(ctx, `
		UPDATE videos SET status = ?, video_url = ?, thumbnail_url = ?, file_size = ?, error_message = NULL, updated_at = ?
		WHERE id = ?`,
		types.RecordCompleted, url, thumbnailURL, fileSize, s.stamp(), id)
}

func (s *Store) FailVideo(ctx context.Context, id int64, message string) error {
	return s.exec(ctx, `
		UPDATE videos SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		types.RecordFailed, message, s.stamp(), id)
}

const videoColumns = `id, prompt, style, duration, resolution, fps, video_url, thumbnail_url, file_size, status, error_message, created_at, updated_at`

func (s *Store) getVideo(ctx context.Context, id int64) (Video, error) {
	row := s.db.QueryRowContext(ctx, s.d.rebind(`SELECT `+videoColumns+` FROM videos WHERE id = ?`), id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Video{}, ErrNotFound
	}
	return v, err
}

// ListVideos returns videos newest first.
func (s *Store) ListVideos(ctx context.Context, page, perPage int) (Page[Video], error) {
	page, perPage = normalizePage(page, perPage)

	total, err := s.count(ctx, "videos")
	if err != nil {
		return Page[Video]{}, err
	}

	rows, err := s.db.QueryContext(ctx, s.d.rebind(`
		SELECT `+videoColumns+` FROM videos
		ORDER BY id DESC
		LIMIT ? OFFSET ?`),
		perPage, (page-1)*perPage)
	if err != nil {
		return Page[Video]{}, err
	}
	defer rows.Close()

	items := []Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return Page[Video]{}, err
		}
		items = append(items, v)
	}

	return Page[Video]{
		Items: items,
		Total: total,
		Pages: pageCount(total, perPage),
		Page:  page,
	}, rows.Err()
}

func scanVideo(sc scanner) (Video, error) {
	var (
		v                    Video
		url, thumb, errMsg   sql.NullString
		size                 sql.NullInt64
		createdAt, updatedAt string
	)
	err := sc.Scan(&v.ID, &v.Prompt, &v.Style, &v.Duration, &v.Resolution, &v.Fps,
		&url, &thumb, &size, &v.Status, &errMsg, &createdAt, &updatedAt)
	if err != nil {
		return Video{}, err
	}
	v.URL = url.String
	v.ThumbnailURL = thumb.String
	v.FileSize = size.Int64
	if errMsg.Valid {
		v.ErrorMessage = &errMsg.String
	}
	v.CreatedAt = parseStamp(createdAt)
	v.UpdatedAt = parseStamp(updatedAt)
	return v, nil
}

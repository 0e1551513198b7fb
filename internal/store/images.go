package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"genstudio/types"
)

type Image struct {
	ID           int64
	Prompt       string
	Style        string
	Resolution   string
	Format       string
	URL          string
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (i Image) HistoryItem() types.HistoryItem {
	return types.HistoryItem{
		ID:           i.ID,
		Prompt:       i.Prompt,
		Style:        i.Style,
		Resolution:   i.Resolution,
		Format:       i.Format,
		ImageURL:     i.URL,
		Status:       i.Status,
		ErrorMessage: i.ErrorMessage,
		CreatedAt:    types.NewFlexibleTime(i.CreatedAt),
		UpdatedAt:    types.NewFlexibleTime(i.UpdatedAt),
	}
}

// CreateImage inserts img in the generating state and returns it with its id.
func (s *Store) CreateImage(ctx context.Context, img Image) (Image, error) {
	if img.Status == "" {
		img.Status = types.RecordGenerating
	}
	ts := s.stamp()
	err := s.db.QueryRowContext(ctx, s.d.rebind(`
		INSERT INTO images (prompt, style, resolution, format, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		img.Prompt, img.Style, img.Resolution, img.Format, img.Status, ts, ts,
	).Scan(&img.ID)
	if err != nil {
		return Image{}, err
	}
	img.CreatedAt = parseStamp(ts)
	img.UpdatedAt = img.CreatedAt
	return img, nil
}

func (s *Store) CompleteImage(ctx context.Context, id int64, url string) error {
	return s.exec(ctx, `
		UPDATE images SET status = ?, image_url = ?, error_message = NULL, updated_at = ?
		WHERE id = ?`,
		types.RecordCompleted, url, s.stamp(), id)
}

func (s *Store) FailImage(ctx context.Context, id int64, message string) error {
	return s.exec(ctx, `
		UPDATE images SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		types.RecordFailed, message, s.stamp(), id)
}

const imageColumns = `id, prompt, style, resolution, format, image_url, status, error_message, created_at, updated_at`

func (s *Store) getImage(ctx context.Context, id int64) (Image, error) {
	row := s.db.QueryRowContext(ctx, s.d.rebind(`SELECT `+imageColumns+` FROM images WHERE id = ?`), id)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Image{}, ErrNotFound
	}
	return img, err
}

// ListImages returns images newest first.
func (s *Store) ListImages(ctx context.Context, page, perPage int) (Page[Image], error) {
	page, perPage = normalizePage(page, perPage)

	total, err := s.count(ctx, "images")
	if err != nil {
		return Page[Image]{}, err
	}

	rows, err := s.db.QueryContext(ctx, s.d.rebind(`
		SELECT `+imageColumns+` FROM images
		ORDER BY id DESC
		LIMIT ? OFFSET ?`),
		perPage, (page-1)*perPage)
	if err != nil {
		return Page[Image]{}, err
	}
	defer rows.Close()

	items := []Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return Page[Image]{}, err
		}
		items = append(items, img)
	}

	return Page[Image]{
		Items: items,
		Total: total,
		Pages: pageCount(total, perPage),
		Page:  page,
	}, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(sc scanner) (Image, error) {
	var (
		img                  Image
		url, errMsg          sql.NullString
		createdAt, updatedAt string
	)
	err := sc.Scan(&img.ID, &img.Prompt, &img.Style, &img.Resolution, &img.Format,
		&url, &img.Status, &errMsg, &createdAt, &updatedAt)
	if err != nil {
		return Image{}, err
	}
	img.URL = url.String
	if errMsg.Valid {
		img.ErrorMessage = &errMsg.String
	}
	img.CreatedAt = parseStamp(createdAt)
	img.UpdatedAt = parseStamp(updatedAt)
	return img, nil
}

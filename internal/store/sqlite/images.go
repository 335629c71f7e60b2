package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/barkeepapp/barkeep-server/internal/domain"
)

// imageColumns is the ordered list of columns selected in image queries.
// Must match the scan order in scanImage.
const imageColumns = `id, imageable_type, imageable_id, file_path, file_extension,
	copyright, sort, placeholder_hash, created_by, created_at, updated_at`

func scanImage(scanner interface{ Scan(dest ...any) error }) (*domain.Image, error) {
	var img domain.Image

	var (
		copyright       sql.NullString
		placeholderHash sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := scanner.Scan(
		&img.ID,
		&img.ImageableType,
		&img.ImageableID,
		&img.FilePath,
		&img.FileExtension,
		&copyright,
		&img.Sort,
		&placeholderHash,
		&img.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	img.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	img.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if copyright.Valid {
		img.Copyright = copyright.String
	}
	if placeholderHash.Valid {
		img.PlaceholderHash = placeholderHash.String
	}

	return &img, nil
}

// InsertImages bulk-inserts image rows inside one transaction. Every row
// must already carry a real ImageableID: staging by slug happens upstream,
// before the owning entities are persisted.
func (s *Store) InsertImages(ctx context.Context, images []*domain.Image) (int, error) {
	if len(images) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, img := range images {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO images (
				id, imageable_type, imageable_id, file_path, file_extension,
				copyright, sort, placeholder_hash, created_by, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			img.ID,
			string(img.ImageableType),
			img.ImageableID,
			img.FilePath,
			img.FileExtension,
			nullString(img.Copyright),
			img.Sort,
			nullString(img.PlaceholderHash),
			img.CreatedBy,
			formatTime(img.CreatedAt),
			formatTime(img.UpdatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("insert image %s: %w", img.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit images: %w", err)
	}
	return len(images), nil
}

// ListImagesForOwner returns an entity's images in sort order.
func (s *Store) ListImagesForOwner(ctx context.Context, ownerType domain.ImageableType, ownerID string) ([]*domain.Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM images
		WHERE imageable_type = ? AND imageable_id = ? ORDER BY sort ASC`,
		string(ownerType), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	var images []*domain.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return images, nil
}

// CountImagesForOwner returns the number of image rows an entity owns.
func (s *Store) CountImagesForOwner(ctx context.Context, ownerType domain.ImageableType, ownerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM images WHERE imageable_type = ? AND imageable_id = ?`,
		string(ownerType), ownerID).Scan(&n)
	return n, err
}

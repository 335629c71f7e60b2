package sqlite

import (
	"context"
	"database/sql"

	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/store"
)

// barColumns is the ordered list of columns selected in bar queries.
// Must match the scan order in scanBar.
const barColumns = `id, name, subtitle, description, created_by, created_at, updated_at`

func scanBar(scanner interface{ Scan(dest ...any) error }) (*domain.Bar, error) {
	var b domain.Bar

	var (
		subtitle    sql.NullString
		description sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Name,
		&subtitle,
		&description,
		&b.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if subtitle.Valid {
		b.Subtitle = subtitle.String
	}
	if description.Valid {
		b.Description = description.String
	}

	return &b, nil
}

// CreateBar inserts a new bar.
func (s *Store) CreateBar(ctx context.Context, b *domain.Bar) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bars (id, name, subtitle, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.Name,
		nullString(b.Subtitle),
		nullString(b.Description),
		b.CreatedBy,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetBarByID retrieves a bar by id.
// Returns store.ErrNotFound if the bar does not exist.
func (s *Store) GetBarByID(ctx context.Context, barID string) (*domain.Bar, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+barColumns+` FROM bars WHERE id = ?`, barID)

	b, err := scanBar(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBars returns all bars ordered by creation time.
func (s *Store) ListBars(ctx context.Context) ([]*domain.Bar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+barColumns+` FROM bars ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []*domain.Bar
	for rows.Next() {
		b, err := scanBar(rows)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if bars == nil {
		bars = []*domain.Bar{}
	}

	return bars, nil
}

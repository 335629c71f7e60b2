package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/id"
	"github.com/barkeepapp/barkeep-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, bar_id, name, created_at, updated_at`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(&t.ID, &t.BarID, &t.Name, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on duplicate (bar, lowercase name).
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, bar_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID,
		t.BarID,
		t.Name,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTagByName retrieves a tag by case-insensitive name within a bar.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByName(ctx context.Context, barID, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE bar_id = ? AND lower(name) = lower(?)`,
		barID, name)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindOrCreateTag finds an existing tag by name within a bar or creates a
// new one. Tag references are resolved at cocktail-import time and must
// exist by the time the link row is written, so tags get-or-create rather
// than skip-if-exists.
// Returns (tag, created, error) where created is true if a new tag was made.
func (s *Store) FindOrCreateTag(ctx context.Context, barID, name string) (*domain.Tag, bool, error) {
	// Try to find existing tag first.
	existing, err := s.GetTagByName(ctx, barID, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	// Tag doesn't exist, create it.
	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, false, fmt.Errorf("generate tag id: %w", err)
	}

	now := time.Now().UTC()
	t := &domain.Tag{
		ID:        tagID,
		BarID:     barID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.CreateTag(ctx, t); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// A concurrent import just created it; fetch and reuse.
			existing, err := s.GetTagByName(ctx, barID, name)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return t, true, nil
}

// InsertCocktailTags bulk-inserts cocktail-tag links inside one transaction.
// Re-linking an existing pair is ignored (idempotent re-import).
func (s *Store) InsertCocktailTags(ctx context.Context, links []*domain.CocktailTag) (int, error) {
	if len(links) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, l := range links {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO cocktail_tags (cocktail_id, tag_id)
			VALUES (?, ?)`,
			l.CocktailID,
			l.TagID,
		)
		if err != nil {
			return 0, fmt.Errorf("insert cocktail tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cocktail tags: %w", err)
	}
	return len(links), nil
}

// ListTagsForCocktail returns the tags linked to a cocktail, ordered by name.
func (s *Store) ListTagsForCocktail(ctx context.Context, cocktailID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.bar_id, t.name, t.created_at, t.updated_at
		FROM tags t
		JOIN cocktail_tags ct ON ct.tag_id = t.id
		WHERE ct.cocktail_id = ?
		ORDER BY t.name ASC`, cocktailID)
	if err != nil {
		return nil, fmt.Errorf("query cocktail tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []*domain.Tag{}
	}

	return tags, nil
}

// CountTags returns the number of tags in a bar.
func (s *Store) CountTags(ctx context.Context, barID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE bar_id = ?`, barID).Scan(&n)
	return n, err
}

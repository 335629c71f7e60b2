package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/store"
)

// ingredientColumns is the ordered list of columns selected in ingredient
// queries. Must match the scan order in scanIngredient.
const ingredientColumns = `id, bar_id, slug, name, category_id, strength,
	description, origin, color, created_by, created_at, updated_at`

func scanIngredient(scanner interface{ Scan(dest ...any) error }) (*domain.Ingredient, error) {
	var ing domain.Ingredient

	var (
		categoryID  sql.NullString
		strength    sql.NullFloat64
		description sql.NullString
		origin      sql.NullString
		color       sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&ing.ID,
		&ing.BarID,
		&ing.Slug,
		&ing.Name,
		&categoryID,
		&strength,
		&description,
		&origin,
		&color,
		&ing.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	ing.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	ing.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		ing.CategoryID = categoryID.String
	}
	if strength.Valid {
		ing.Strength = strength.Float64
	}
	if description.Valid {
		ing.Description = description.String
	}
	if origin.Valid {
		ing.Origin = origin.String
	}
	if color.Valid {
		ing.Color = color.String
	}

	return &ing, nil
}

// InsertIngredients bulk-inserts ingredient rows inside one transaction.
// The batch is one logical unit: any failure rolls back every row of it.
// Returns the number of rows inserted.
func (s *Store) InsertIngredients(ctx context.Context, ingredients []*domain.Ingredient) (int, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, ing := range ingredients {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ingredients (
				id, bar_id, slug, name, category_id, strength,
				description, origin, color, created_by, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ing.ID,
			ing.BarID,
			ing.Slug,
			ing.Name,
			nullString(ing.CategoryID),
			nullFloat(ing.Strength),
			nullString(ing.Description),
			nullString(ing.Origin),
			nullString(ing.Color),
			ing.CreatedBy,
			formatTime(ing.CreatedAt),
			formatTime(ing.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, store.ErrAlreadyExists.WithMessage(
					fmt.Sprintf("ingredient %q already exists in bar %s", ing.Name, ing.BarID))
			}
			return 0, fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ingredients: %w", err)
	}
	return len(ingredients), nil
}

// IngredientSlugsByBar returns (slug, id) pairs for every ingredient in a
// bar. Feeds the dedup index and the post-insert image re-keying pass.
func (s *Store) IngredientSlugsByBar(ctx context.Context, barID string) ([]store.NameID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, id FROM ingredients WHERE bar_id = ?`, barID)
	if err != nil {
		return nil, fmt.Errorf("query ingredient slugs: %w", err)
	}
	defer rows.Close()

	return collectNameIDs(rows)
}

// IngredientNamesByBar returns (lowercased name, id) pairs for every
// ingredient in a bar. Feeds recipe-line reference resolution.
func (s *Store) IngredientNamesByBar(ctx context.Context, barID string) ([]store.NameID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lower(name), id FROM ingredients WHERE bar_id = ?`, barID)
	if err != nil {
		return nil, fmt.Errorf("query ingredient names: %w", err)
	}
	defer rows.Close()

	return collectNameIDs(rows)
}

// GetIngredientBySlug retrieves an ingredient by its slug.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetIngredientBySlug(ctx context.Context, slug string) (*domain.Ingredient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE slug = ?`, slug)

	ing, err := scanIngredient(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ing, nil
}

// ListIngredientsByBar returns all ingredients in a bar ordered by name.
func (s *Store) ListIngredientsByBar(ctx context.Context, barID string) ([]*domain.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE bar_id = ? ORDER BY name ASC`, barID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingredients []*domain.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if ingredients == nil {
		ingredients = []*domain.Ingredient{}
	}

	return ingredients, nil
}

// CountIngredients returns the number of ingredients in a bar.
func (s *Store) CountIngredients(ctx context.Context, barID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ingredients WHERE bar_id = ?`, barID).Scan(&n)
	return n, err
}

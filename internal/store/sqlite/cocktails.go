package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/store"
)

// cocktailColumns is the ordered list of columns selected in cocktail
// queries. Must match the scan order in scanCocktail.
const cocktailColumns = `id, bar_id, slug, name, instructions, description,
	garnish, source, abv, glass_id, method_id, created_by, created_at, updated_at`

func scanCocktail(scanner interface{ Scan(dest ...any) error }) (*domain.Cocktail, error) {
	var c domain.Cocktail

	var (
		description sql.NullString
		garnish     sql.NullString
		source      sql.NullString
		abv         sql.NullFloat64
		glassID     sql.NullString
		methodID    sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&c.ID,
		&c.BarID,
		&c.Slug,
		&c.Name,
		&c.Instructions,
		&description,
		&garnish,
		&source,
		&abv,
		&glassID,
		&methodID,
		&c.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		c.Description = description.String
	}
	if garnish.Valid {
		c.Garnish = garnish.String
	}
	if source.Valid {
		c.Source = source.String
	}
	if abv.Valid {
		c.Abv = abv.Float64
	}
	if glassID.Valid {
		c.GlassID = glassID.String
	}
	if methodID.Valid {
		c.MethodID = methodID.String
	}

	return &c, nil
}

// CreateCocktail inserts a single cocktail row. Cocktails are inserted one
// at a time because the generated row must be visible immediately: its id
// is needed for tag links, ingredient links, and image rows.
// Returns store.ErrAlreadyExists on a slug collision.
func (s *Store) CreateCocktail(ctx context.Context, c *domain.Cocktail) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cocktails (
			id, bar_id, slug, name, instructions, description,
			garnish, source, abv, glass_id, method_id, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.BarID,
		c.Slug,
		c.Name,
		c.Instructions,
		nullString(c.Description),
		nullString(c.Garnish),
		nullString(c.Source),
		nullFloat(c.Abv),
		nullString(c.GlassID),
		nullString(c.MethodID),
		c.CreatedBy,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(
				fmt.Sprintf("cocktail %q already exists in bar %s", c.Name, c.BarID))
		}
		return err
	}
	return nil
}

// InsertCocktailIngredients bulk-inserts recipe lines inside one
// transaction. Lines with an empty IngredientID are written with a NULL
// reference, not dropped.
func (s *Store) InsertCocktailIngredients(ctx context.Context, lines []*domain.CocktailIngredient) (int, error) {
	if len(lines) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, l := range lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cocktail_ingredients (cocktail_id, ingredient_id, amount, units, optional, sort)
			VALUES (?, ?, ?, ?, ?, ?)`,
			l.CocktailID,
			nullString(l.IngredientID),
			l.Amount,
			l.Units,
			boolToInt(l.Optional),
			l.Sort,
		)
		if err != nil {
			return 0, fmt.Errorf("insert cocktail ingredient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cocktail ingredients: %w", err)
	}
	return len(lines), nil
}

// ListCocktailIngredients returns a cocktail's recipe lines in sort order.
func (s *Store) ListCocktailIngredients(ctx context.Context, cocktailID string) ([]*domain.CocktailIngredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cocktail_id, ingredient_id, amount, units, optional, sort
		FROM cocktail_ingredients WHERE cocktail_id = ? ORDER BY sort ASC`, cocktailID)
	if err != nil {
		return nil, fmt.Errorf("query cocktail ingredients: %w", err)
	}
	defer rows.Close()

	var lines []*domain.CocktailIngredient
	for rows.Next() {
		var l domain.CocktailIngredient
		var ingredientID sql.NullString
		var optional int
		if err := rows.Scan(&l.CocktailID, &ingredientID, &l.Amount, &l.Units, &optional, &l.Sort); err != nil {
			return nil, err
		}
		if ingredientID.Valid {
			l.IngredientID = ingredientID.String
		}
		l.Optional = optional != 0
		lines = append(lines, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// CocktailSlugsByBar returns (slug, id) pairs for every cocktail in a bar.
func (s *Store) CocktailSlugsByBar(ctx context.Context, barID string) ([]store.NameID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, id FROM cocktails WHERE bar_id = ?`, barID)
	if err != nil {
		return nil, fmt.Errorf("query cocktail slugs: %w", err)
	}
	defer rows.Close()

	return collectNameIDs(rows)
}

// FindCocktailByName retrieves a cocktail by case-insensitive name within a
// bar. This is the duplicate-policy match used by collection import.
// Returns store.ErrNotFound when no cocktail matches.
func (s *Store) FindCocktailByName(ctx context.Context, barID, name string) (*domain.Cocktail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cocktailColumns+` FROM cocktails WHERE bar_id = ? AND lower(name) = lower(?)`,
		barID, name)

	c, err := scanCocktail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCocktailBySlug retrieves a cocktail by its slug.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetCocktailBySlug(ctx context.Context, slug string) (*domain.Cocktail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cocktailColumns+` FROM cocktails WHERE slug = ?`, slug)

	c, err := scanCocktail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCocktailsByBar returns all cocktails in a bar ordered by name.
func (s *Store) ListCocktailsByBar(ctx context.Context, barID string) ([]*domain.Cocktail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cocktailColumns+` FROM cocktails WHERE bar_id = ? ORDER BY name ASC`, barID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cocktails []*domain.Cocktail
	for rows.Next() {
		c, err := scanCocktail(rows)
		if err != nil {
			return nil, err
		}
		cocktails = append(cocktails, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if cocktails == nil {
		cocktails = []*domain.Cocktail{}
	}

	return cocktails, nil
}

// DeleteCocktail removes a cocktail, its recipe lines and tag links
// (via cascade), and its image rows. Used by the Overwrite duplicate
// policy; the bundle importer never deletes.
func (s *Store) DeleteCocktail(ctx context.Context, cocktailID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Image rows are polymorphic, no FK cascade covers them.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM images WHERE imageable_type = ? AND imageable_id = ?`,
		string(domain.ImageableCocktail), cocktailID); err != nil {
		return fmt.Errorf("delete cocktail images: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM cocktails WHERE id = ?`, cocktailID)
	if err != nil {
		return fmt.Errorf("delete cocktail: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// CountCocktails returns the number of cocktails in a bar.
func (s *Store) CountCocktails(ctx context.Context, barID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cocktails WHERE bar_id = ?`, barID).Scan(&n)
	return n, err
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/store"
)

// taxonomyColumns is the ordered list of columns selected in taxonomy queries.
// Must match the scan order in scanTaxonomy.
const taxonomyColumns = `id, bar_id, kind, name, description, dilution_ratio, created_at, updated_at`

func scanTaxonomy(scanner interface{ Scan(dest ...any) error }) (*domain.Taxonomy, error) {
	var t domain.Taxonomy

	var (
		description   sql.NullString
		dilutionRatio sql.NullFloat64
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&t.ID,
		&t.BarID,
		&t.Kind,
		&t.Name,
		&description,
		&dilutionRatio,
		&createdAt,
		&updatedAt,
	)
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

	if description.Valid {
		t.Description = description.String
	}
	if dilutionRatio.Valid {
		t.DilutionRatio = dilutionRatio.Float64
	}

	return &t, nil
}

// InsertTaxonomies bulk-inserts taxonomy rows inside one transaction.
// The batch is one logical unit: any failure rolls back every row of it.
// Returns the number of rows inserted.
func (s *Store) InsertTaxonomies(ctx context.Context, taxonomies []*domain.Taxonomy) (int, error) {
	if len(taxonomies) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, t := range taxonomies {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO taxonomies (id, bar_id, kind, name, description, dilution_ratio, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID,
			t.BarID,
			string(t.Kind),
			t.Name,
			nullString(t.Description),
			nullFloat(t.DilutionRatio),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, store.ErrAlreadyExists.WithMessage(
					fmt.Sprintf("%s %q already exists in bar %s", t.Kind, t.Name, t.BarID))
			}
			return 0, fmt.Errorf("insert taxonomy %q: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit taxonomies: %w", err)
	}
	return len(taxonomies), nil
}

// TaxonomyNamesByBar returns (lowercased name, id) pairs for one taxonomy
// kind within a bar. This feeds the resolver's name index; it is queried
// once per import run, never per record.
func (s *Store) TaxonomyNamesByBar(ctx context.Context, barID string, kind domain.TaxonomyKind) ([]store.NameID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lower(name), id FROM taxonomies WHERE bar_id = ? AND kind = ?`,
		barID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query taxonomy names: %w", err)
	}
	defer rows.Close()

	return collectNameIDs(rows)
}

// ListTaxonomiesByBar returns all taxonomies of one kind within a bar,
// ordered by name.
func (s *Store) ListTaxonomiesByBar(ctx context.Context, barID string, kind domain.TaxonomyKind) ([]*domain.Taxonomy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taxonomyColumns+` FROM taxonomies WHERE bar_id = ? AND kind = ? ORDER BY name ASC`,
		barID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taxonomies []*domain.Taxonomy
	for rows.Next() {
		t, err := scanTaxonomy(rows)
		if err != nil {
			return nil, err
		}
		taxonomies = append(taxonomies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if taxonomies == nil {
		taxonomies = []*domain.Taxonomy{}
	}

	return taxonomies, nil
}

// CountTaxonomies returns the number of taxonomy rows of one kind in a bar.
func (s *Store) CountTaxonomies(ctx context.Context, barID string, kind domain.TaxonomyKind) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM taxonomies WHERE bar_id = ? AND kind = ?`,
		barID, string(kind)).Scan(&n)
	return n, err
}

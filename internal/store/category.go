// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"curio/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, slug, name, owner_id, created_at, updated_at`

func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Slug, &c.Name, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name ascending, without items.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}

// ListWithItems returns the whole catalog: categories ordered by name
// ascending, each carrying its items ordered by name ascending.
func (s *CategoryStore) ListWithItems() ([]models.Category, error) {
	cats, err := s.List()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT ` + itemColumns + ` FROM items ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[uuid.UUID][]models.Item)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cats {
		cats[i].Items = byCategory[cats[i].ID]
	}
	return cats, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. A slug collision — whether
// seen up front or lost to a concurrent creator — comes back as
// models.ErrConflict via the categories_slug_key constraint.
func (s *CategoryStore) Create(name, slug string, ownerID uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, owner_id)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		name, slug, ownerID,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", mapConflict(err))
	}
	return c, nil
}

// Rename updates a category's name and slug. Returns models.ErrNotFound if
// the row is gone and models.ErrConflict if another category owns the slug.
func (s *CategoryStore) Rename(id uuid.UUID, name, slug string) (*models.Category, error) {
	row := s.db.QueryRow(`
		UPDATE categories SET name = $1, slug = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+categoryColumns,
		name, slug, id,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rename category: %w", mapConflict(err))
	}
	return c, nil
}

// DeleteCascade removes a category and all of its items in one transaction.
// Items go first so no orphan item row is ever visible, even mid-failure.
func (s *CategoryStore) DeleteCascade(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM items WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("delete category items: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}

	return tx.Commit()
}

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

// ItemStore manages items in the database.
//
// Create and Update take an assetStep callback that runs inside the open
// transaction, after the row mutation and before commit. The catalog
// service uses it for the image store/rename so that a file failure rolls
// the row change back and a row failure never strands a renamed file behind
// a committed reference.
type ItemStore struct {
	db *sql.DB
}

// NewItemStore returns a new ItemStore.
func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = `id, category_id, slug, name, description, image, random_string, owner_id, created_at, updated_at`

func scanItem(scanner interface{ Scan(...any) error }) (*models.Item, error) {
	var it models.Item
	err := scanner.Scan(
		&it.ID, &it.CategoryID, &it.Slug, &it.Name, &it.Description,
		&it.Image, &it.RandomString, &it.OwnerID, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListByCategory returns a category's items ordered by name ascending.
func (s *ItemStore) ListByCategory(categoryID uuid.UUID) ([]models.Item, error) {
	rows, err := s.db.Query(`
		SELECT `+itemColumns+` FROM items
		WHERE category_id = $1 ORDER BY name ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// Latest returns the n most recently created items, newest first.
func (s *ItemStore) Latest(n int) ([]models.Item, error) {
	rows, err := s.db.Query(`
		SELECT `+itemColumns+` FROM items
		ORDER BY created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("latest items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// FindBySlug retrieves an item by its category and slug. Returns nil if
// not found.
func (s *ItemStore) FindBySlug(categoryID uuid.UUID, slug string) (*models.Item, error) {
	row := s.db.QueryRow(`
		SELECT `+itemColumns+` FROM items
		WHERE category_id = $1 AND slug = $2`, categoryID, slug)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item by slug: %w", err)
	}
	return it, nil
}

// FindByID retrieves an item by ID. Returns nil if not found.
func (s *ItemStore) FindByID(id uuid.UUID) (*models.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item by id: %w", err)
	}
	return it, nil
}

// SlugTaken reports whether an item other than excludeID already occupies
// the (categoryID, slug) pair. Pass uuid.Nil to check against all items.
func (s *ItemStore) SlugTaken(categoryID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM items
			WHERE category_id = $1 AND slug = $2 AND id <> $3
		)`, categoryID, slug, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("item slug taken: %w", err)
	}
	return taken, nil
}

// Create inserts a new item and returns it. If assetStep is non-nil it runs
// between the insert and the commit; its failure aborts the whole create.
// A (category, slug) collision surfaces as models.ErrConflict.
func (s *ItemStore) Create(it *models.Item, assetStep func() error) (*models.Item, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO items (category_id, slug, name, description, image, random_string, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+itemColumns,
		it.CategoryID, it.Slug, it.Name, it.Description, it.Image, it.RandomString, it.OwnerID,
	)
	created, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", mapConflict(err))
	}

	if assetStep != nil {
		if err := assetStep(); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create item: %w", err)
	}
	return created, nil
}

// Update rewrites every mutable field of an item. If assetStep is non-nil
// it runs between the row update and the commit; its failure rolls the
// whole edit back so no field is persisted. Returns models.ErrNotFound if
// the row is gone and models.ErrConflict on a (category, slug) collision.
func (s *ItemStore) Update(it *models.Item, assetStep func() error) (*models.Item, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		UPDATE items SET
			category_id = $1, slug = $2, name = $3, description = $4,
			image = $5, random_string = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+itemColumns,
		it.CategoryID, it.Slug, it.Name, it.Description, it.Image, it.RandomString, it.ID,
	)
	updated, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update item: %w", mapConflict(err))
	}

	if assetStep != nil {
		if err := assetStep(); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update item: %w", err)
	}
	return updated, nil
}

// Delete removes an item row. Returns models.ErrNotFound if nothing was
// deleted.
func (s *ItemStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

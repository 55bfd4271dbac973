// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"curio/internal/models"
)

// uniqueErr is what the pgx stdlib driver surfaces when a UNIQUE
// constraint fires.
func uniqueErr(constraint string) error {
	return &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint}
}

func newMock(t *testing.T) (sqlmock.Sqlmock, func() *CategoryStore, func() *ItemStore, func() *UserStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return mock,
		func() *CategoryStore { return NewCategoryStore(db) },
		func() *ItemStore { return NewItemStore(db) },
		func() *UserStore { return NewUserStore(db) }
}

func categoryRows(cats ...models.Category) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "slug", "name", "owner_id", "created_at", "updated_at"})
	for _, c := range cats {
		rows.AddRow(c.ID.String(), c.Slug, c.Name, c.OwnerID.String(), time.Now(), time.Now())
	}
	return rows
}

func itemRows(items ...models.Item) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "category_id", "slug", "name", "description",
		"image", "random_string", "owner_id", "created_at", "updated_at",
	})
	for _, it := range items {
		var image, code any
		if it.Image != nil {
			image = *it.Image
		}
		if it.RandomString != nil {
			code = *it.RandomString
		}
		rows.AddRow(
			it.ID.String(), it.CategoryID.String(), it.Slug, it.Name, it.Description,
			image, code, it.OwnerID.String(), time.Now(), time.Now(),
		)
	}
	return rows
}

func TestCategoryStore_Create(t *testing.T) {
	t.Run("returns the inserted row", func(t *testing.T) {
		mock, cats, _, _ := newMock(t)
		owner := uuid.New()
		want := models.Category{ID: uuid.New(), Slug: "ski-gear", Name: "Ski Gear", OwnerID: owner}

		mock.ExpectQuery("INSERT INTO categories").
			WithArgs("Ski Gear", "ski-gear", owner).
			WillReturnRows(categoryRows(want))

		got, err := cats().Create("Ski Gear", "ski-gear", owner)
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if got.ID != want.ID || got.Slug != "ski-gear" {
			t.Errorf("Create() = %+v, want %+v", got, want)
		}
	})

	t.Run("unique violation maps to ErrConflict", func(t *testing.T) {
		mock, cats, _, _ := newMock(t)
		owner := uuid.New()

		mock.ExpectQuery("INSERT INTO categories").
			WithArgs("Ski Gear", "ski-gear", owner).
			WillReturnError(uniqueErr("categories_slug_key"))

		_, err := cats().Create("Ski Gear", "ski-gear", owner)
		if !errors.Is(err, models.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})
}

func TestCategoryStore_FindBySlug(t *testing.T) {
	t.Run("unknown slug returns nil without error", func(t *testing.T) {
		mock, cats, _, _ := newMock(t)

		mock.ExpectQuery("SELECT (.+) FROM categories WHERE slug").
			WithArgs("nope").
			WillReturnRows(categoryRows())

		got, err := cats().FindBySlug("nope")
		if err != nil {
			t.Fatalf("FindBySlug() error: %v", err)
		}
		if got != nil {
			t.Errorf("FindBySlug() = %+v, want nil", got)
		}
	})
}

func TestCategoryStore_Rename(t *testing.T) {
	t.Run("missing row is ErrNotFound", func(t *testing.T) {
		mock, cats, _, _ := newMock(t)
		id := uuid.New()

		mock.ExpectQuery("UPDATE categories SET").
			WithArgs("New Name", "new-name", id).
			WillReturnRows(categoryRows())

		_, err := cats().Rename(id, "New Name", "new-name")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("slug collision is ErrConflict", func(t *testing.T) {
		mock, cats, _, _ := newMock(t)
		id := uuid.New()

		mock.ExpectQuery("UPDATE categories SET").
			WithArgs("Taken", "taken", id).
			WillReturnError(uniqueErr("categories_slug_key"))

		_, err := cats().Rename(id, "Taken", "taken")
		if !errors.Is(err, models.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})
}

func TestCategoryStore_DeleteCascade(t *testing.T) {
	t.Run("deletes items before the category in one tx", func(t *testing.T) {
		mock, cats, _, _ := newMock(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM items WHERE category_id").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("DELETE FROM categories WHERE id").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := cats().DeleteCascade(id); err != nil {
			t.Errorf("DeleteCascade() error: %v", err)
		}
	})

	t.Run("missing category rolls back as ErrNotFound", func(t *testing.T) {
		mock, cats, _, _ := newMock(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM items WHERE category_id").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM categories WHERE id").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		if err := cats().DeleteCascade(id); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestItemStore_Create(t *testing.T) {
	seed := func() models.Item {
		return models.Item{
			ID:         uuid.New(),
			CategoryID: uuid.New(),
			Slug:       "snowboard",
			Name:       "Snowboard",
			OwnerID:    uuid.New(),
		}
	}

	t.Run("commits after a successful asset step", func(t *testing.T) {
		mock, _, items, _ := newMock(t)
		it := seed()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO items").
			WillReturnRows(itemRows(it))
		mock.ExpectCommit()

		stepRan := false
		got, err := items().Create(&it, func() error { stepRan = true; return nil })
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if !stepRan {
			t.Error("asset step did not run")
		}
		if got.ID != it.ID {
			t.Errorf("Create() ID = %v, want %v", got.ID, it.ID)
		}
	})

	t.Run("asset step failure rolls the insert back", func(t *testing.T) {
		mock, _, items, _ := newMock(t)
		it := seed()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO items").
			WillReturnRows(itemRows(it))
		mock.ExpectRollback()

		stepErr := errors.New("backend down")
		_, err := items().Create(&it, func() error { return stepErr })
		if !errors.Is(err, stepErr) {
			t.Errorf("error = %v, want the asset step's error", err)
		}
	})

	t.Run("pair collision maps to ErrConflict", func(t *testing.T) {
		mock, _, items, _ := newMock(t)
		it := seed()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO items").
			WillReturnError(uniqueErr("items_category_slug_key"))
		mock.ExpectRollback()

		_, err := items().Create(&it, nil)
		if !errors.Is(err, models.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})
}

func TestItemStore_Update(t *testing.T) {
	t.Run("missing row is ErrNotFound", func(t *testing.T) {
		mock, _, items, _ := newMock(t)
		it := models.Item{ID: uuid.New(), CategoryID: uuid.New(), OwnerID: uuid.New()}

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE items SET").
			WillReturnRows(itemRows())
		mock.ExpectRollback()

		_, err := items().Update(&it, nil)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("asset step failure aborts the edit", func(t *testing.T) {
		mock, _, items, _ := newMock(t)
		it := models.Item{ID: uuid.New(), CategoryID: uuid.New(), Slug: "s", Name: "n", OwnerID: uuid.New()}

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE items SET").
			WillReturnRows(itemRows(it))
		mock.ExpectRollback()

		stepErr := errors.New("rename failed")
		_, err := items().Update(&it, func() error { return stepErr })
		if !errors.Is(err, stepErr) {
			t.Errorf("error = %v, want the asset step's error", err)
		}
	})
}

func TestItemStore_SlugTaken(t *testing.T) {
	mock, _, items, _ := newMock(t)
	catID, excl := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(catID, "snowboard", excl).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := items().SlugTaken(catID, "snowboard", excl)
	if err != nil {
		t.Fatalf("SlugTaken() error: %v", err)
	}
	if !taken {
		t.Error("SlugTaken() = false, want true")
	}
}

func TestItemStore_Delete(t *testing.T) {
	t.Run("zero rows is ErrNotFound", func(t *testing.T) {
		mock, _, items, _ := newMock(t)
		id := uuid.New()

		mock.ExpectExec("DELETE FROM items WHERE id").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := items().Delete(id); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestUserStore_Create(t *testing.T) {
	t.Run("email collision maps to ErrConflict", func(t *testing.T) {
		mock, _, _, users := newMock(t)

		mock.ExpectQuery("INSERT INTO users").
			WithArgs("Alex Doe", "alex@example.com", "pic").
			WillReturnError(uniqueErr("users_email_key"))

		_, err := users().Create("Alex Doe", "alex@example.com", "pic")
		if !errors.Is(err, models.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})
}

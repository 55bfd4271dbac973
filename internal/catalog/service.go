// Package catalog orchestrates catalog mutations. Every mutating operation
// runs the same pipeline: authenticate (session present), authorize (owner
// check), mutate the store, reconcile the asset store. Read operations skip
// the guard entirely.
package catalog

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"curio/internal/assets"
	"curio/internal/models"
	"curio/internal/session"
	"curio/internal/slug"
)

// CategoryStore is the category persistence contract the service needs.
type CategoryStore interface {
	List() ([]models.Category, error)
	ListWithItems() ([]models.Category, error)
	FindBySlug(slug string) (*models.Category, error)
	FindByID(id uuid.UUID) (*models.Category, error)
	Create(name, slug string, ownerID uuid.UUID) (*models.Category, error)
	Rename(id uuid.UUID, name, slug string) (*models.Category, error)
	DeleteCascade(id uuid.UUID) error
}

// ItemStore is the item persistence contract the service needs. Create and
// Update execute the assetStep callback inside the row transaction, before
// commit, so DB fields and the backing file change together or not at all.
type ItemStore interface {
	ListByCategory(categoryID uuid.UUID) ([]models.Item, error)
	Latest(n int) ([]models.Item, error)
	FindBySlug(categoryID uuid.UUID, slug string) (*models.Item, error)
	SlugTaken(categoryID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error)
	Create(it *models.Item, assetStep func() error) (*models.Item, error)
	Update(it *models.Item, assetStep func() error) (*models.Item, error)
	Delete(id uuid.UUID) error
}

// Upload is a client-submitted image file.
type Upload struct {
	Filename string
	Data     io.Reader
}

// admissible reports whether the upload should be attached. Disallowed
// extensions are silently ignored, not errors.
func (u *Upload) admissible() bool {
	return u != nil && u.Filename != "" && assets.Allowed(u.Filename)
}

// Service composes the stores and the asset backend into the catalog's
// mutating and read operations.
type Service struct {
	categories CategoryStore
	items      ItemStore
	assets     assets.Store
}

// NewService creates a catalog service.
func NewService(categories CategoryStore, items ItemStore, assetStore assets.Store) *Service {
	return &Service{categories: categories, items: items, assets: assetStore}
}

// Catalog returns all categories with their items, both name-ascending.
func (s *Service) Catalog() ([]models.Category, error) {
	return s.categories.ListWithItems()
}

// Categories returns all categories, name-ascending, without items.
func (s *Service) Categories() ([]models.Category, error) {
	return s.categories.List()
}

// LatestItems returns the n most recently added items.
func (s *Service) LatestItems(n int) ([]models.Item, error) {
	return s.items.Latest(n)
}

// CategoryBySlug returns a category and its items, or (nil, nil, nil) when
// the slug is unknown — the caller decides between 404 and empty body.
func (s *Service) CategoryBySlug(categorySlug string) (*models.Category, []models.Item, error) {
	cat, err := s.categories.FindBySlug(categorySlug)
	if err != nil || cat == nil {
		return nil, nil, err
	}
	items, err := s.items.ListByCategory(cat.ID)
	if err != nil {
		return nil, nil, err
	}
	return cat, items, nil
}

// ItemBySlug returns the item at (categorySlug, itemSlug), or nil when
// either slug is unknown.
func (s *Service) ItemBySlug(categorySlug, itemSlug string) (*models.Item, error) {
	cat, err := s.categories.FindBySlug(categorySlug)
	if err != nil || cat == nil {
		return nil, err
	}
	return s.items.FindBySlug(cat.ID, itemSlug)
}

// CreateCategory derives the slug from name and inserts the category owned
// by the session user. A slug collision is models.ErrConflict.
func (s *Service) CreateCategory(sess *session.Data, name string) (*models.Category, error) {
	if err := requireAuth(sess); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrValidation
	}
	return s.categories.Create(name, slug.Derive(name), sess.UserID)
}

// RenameCategory changes a category's name and derived slug. Renaming to
// the current name is a no-op success. Only the owner may rename.
func (s *Service) RenameCategory(sess *session.Data, categorySlug, newName string) (*models.Category, error) {
	if err := requireAuth(sess); err != nil {
		return nil, err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, models.ErrValidation
	}

	cat, err := s.categories.FindBySlug(categorySlug)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, models.ErrNotFound
	}
	if err := authorize(sess, cat.OwnerID); err != nil {
		return nil, err
	}

	if cat.Name == newName {
		return cat, nil
	}
	return s.categories.Rename(cat.ID, newName, slug.Derive(newName))
}

// DeleteCategory removes a category and cascades over its items: each
// item's asset is deleted best-effort (a failure is logged, never fatal —
// a stray file must not block the cascade), then all item rows and the
// category row go in one transaction.
func (s *Service) DeleteCategory(ctx context.Context, sess *session.Data, categorySlug string) error {
	if err := requireAuth(sess); err != nil {
		return err
	}

	cat, err := s.categories.FindBySlug(categorySlug)
	if err != nil {
		return err
	}
	if cat == nil {
		return models.ErrNotFound
	}
	if err := authorize(sess, cat.OwnerID); err != nil {
		return err
	}

	items, err := s.items.ListByCategory(cat.ID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if !it.HasImage() {
			continue
		}
		if err := s.assets.Delete(ctx, *it.Image); err != nil {
			slog.Warn("asset delete failed during category cascade",
				"category", cat.Slug, "item", it.Slug, "error", err)
		}
	}

	return s.categories.DeleteCascade(cat.ID)
}

// CreateItem inserts an item under an existing category. If an admissible
// image is supplied, the file is persisted under the deterministic name
// inside the insert transaction and a fresh disambiguator is minted; a
// store failure aborts the whole create.
func (s *Service) CreateItem(ctx context.Context, sess *session.Data, categoryID uuid.UUID, name, description string, upload *Upload) (*models.Item, error) {
	if err := requireAuth(sess); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrValidation
	}

	cat, err := s.categories.FindByID(categoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, models.ErrNotFound
	}

	itemSlug := slug.Derive(name)
	taken, err := s.items.SlugTaken(cat.ID, itemSlug, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.ErrConflict
	}

	it := &models.Item{
		CategoryID:  cat.ID,
		Slug:        itemSlug,
		Name:        name,
		Description: description,
		OwnerID:     sess.UserID,
	}

	var assetStep func() error
	if upload.admissible() {
		filename := assets.Filename(cat.Slug, itemSlug)
		code := randomCode()
		it.Image = &filename
		it.RandomString = &code
		assetStep = func() error {
			return s.assets.Store(ctx, filename, upload.Data)
		}
	}

	return s.items.Create(it, assetStep)
}

// EditItemInput names the fields an edit may change. Zero values leave the
// corresponding field untouched, so category, name, and description change
// independently.
type EditItemInput struct {
	NewCategoryID  uuid.UUID // uuid.Nil keeps the current category
	NewName        string    // empty keeps the current name
	NewDescription *string   // nil keeps the current description
	Upload         *Upload
}

// EditItem applies an edit to the item at (categorySlug, itemSlug). The
// final (category, slug) pair — after every requested change — is
// validated in one step against other items before anything is persisted.
// If the pair changed and the item owns an image, the backing file is
// renamed to the new deterministic name inside the update transaction; a
// rename failure aborts the edit with no field persisted. A fresh upload
// overwrites the (possibly renamed) file and mints a new disambiguator.
func (s *Service) EditItem(ctx context.Context, sess *session.Data, categorySlug, itemSlug string, in EditItemInput) (*models.Item, error) {
	if err := requireAuth(sess); err != nil {
		return nil, err
	}

	cat, err := s.categories.FindBySlug(categorySlug)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, models.ErrNotFound
	}
	item, err := s.items.FindBySlug(cat.ID, itemSlug)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, models.ErrNotFound
	}
	if err := authorize(sess, item.OwnerID); err != nil {
		return nil, err
	}

	// Resolve the target category and slug the edit lands on.
	targetCat := cat
	if in.NewCategoryID != uuid.Nil && in.NewCategoryID != item.CategoryID {
		targetCat, err = s.categories.FindByID(in.NewCategoryID)
		if err != nil {
			return nil, err
		}
		if targetCat == nil {
			return nil, models.ErrNotFound
		}
	}
	newName := item.Name
	if n := strings.TrimSpace(in.NewName); n != "" {
		newName = n
	}
	newSlug := slug.Derive(newName)

	moved := targetCat.ID != item.CategoryID || newSlug != item.Slug
	if moved {
		taken, err := s.items.SlugTaken(targetCat.ID, newSlug, item.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.ErrConflict
		}
	}

	updated := *item
	updated.CategoryID = targetCat.ID
	updated.Name = newName
	updated.Slug = newSlug
	if in.NewDescription != nil {
		updated.Description = *in.NewDescription
	}

	newFilename := assets.Filename(targetCat.Slug, newSlug)
	var steps []func() error

	if item.HasImage() && moved {
		oldFilename := *item.Image
		updated.Image = &newFilename
		steps = append(steps, func() error {
			return s.assets.Rename(ctx, oldFilename, newFilename)
		})
	}

	if in.Upload.admissible() {
		code := randomCode()
		updated.Image = &newFilename
		updated.RandomString = &code
		upload := in.Upload
		steps = append(steps, func() error {
			return s.assets.Store(ctx, newFilename, upload.Data)
		})
	}

	var assetStep func() error
	if len(steps) > 0 {
		assetStep = func() error {
			for _, step := range steps {
				if err := step(); err != nil {
					return err
				}
			}
			return nil
		}
	}

	return s.items.Update(&updated, assetStep)
}

// DeleteItem removes an item. Its asset is deleted best-effort first; a
// failure is logged and the row deletion proceeds regardless.
func (s *Service) DeleteItem(ctx context.Context, sess *session.Data, categorySlug, itemSlug string) error {
	if err := requireAuth(sess); err != nil {
		return err
	}

	cat, err := s.categories.FindBySlug(categorySlug)
	if err != nil {
		return err
	}
	if cat == nil {
		return models.ErrNotFound
	}
	item, err := s.items.FindBySlug(cat.ID, itemSlug)
	if err != nil {
		return err
	}
	if item == nil {
		return models.ErrNotFound
	}
	if err := authorize(sess, item.OwnerID); err != nil {
		return err
	}

	if item.HasImage() {
		if err := s.assets.Delete(ctx, *item.Image); err != nil {
			slog.Warn("asset delete failed, removing row anyway",
				"item", item.Slug, "error", err)
		}
	}

	return s.items.Delete(item.ID)
}

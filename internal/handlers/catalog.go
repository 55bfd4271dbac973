// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"curio/internal/catalog"
	"curio/internal/flash"
	"curio/internal/middleware"
	"curio/internal/models"
	"curio/internal/render"
	"curio/internal/session"
)

// maxUploadBytes caps the multipart form size for item image uploads.
const maxUploadBytes = 10 << 20

// CatalogWriter is the mutating slice of the catalog service.
type CatalogWriter interface {
	CreateCategory(sess *session.Data, name string) (*models.Category, error)
	RenameCategory(sess *session.Data, categorySlug, newName string) (*models.Category, error)
	DeleteCategory(ctx context.Context, sess *session.Data, categorySlug string) error
	CreateItem(ctx context.Context, sess *session.Data, categoryID uuid.UUID, name, description string, upload *catalog.Upload) (*models.Item, error)
	EditItem(ctx context.Context, sess *session.Data, categorySlug, itemSlug string, in catalog.EditItemInput) (*models.Item, error)
	DeleteItem(ctx context.Context, sess *session.Data, categorySlug, itemSlug string) error
}

// Catalog groups the form-driven mutation handlers. Each one follows the
// same shape: read the form, call the service, flash the outcome, redirect.
type Catalog struct {
	svc      CatalogWriter
	renderer *render.Renderer
}

// NewCatalog creates the catalog mutation handler group.
func NewCatalog(svc CatalogWriter, renderer *render.Renderer) *Catalog {
	return &Catalog{svc: svc, renderer: renderer}
}

// CategoryCreate handles POST /catalog/category/new.
func (c *Catalog) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	name := r.FormValue("categoryName")

	cat, err := c.svc.CreateCategory(sess, name)
	if err != nil {
		c.fail(w, r, err, "category", "/catalog")
		return
	}

	flash.Set(w, "New category "+cat.Name+" successfully created")
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

// CategoryEdit handles POST /catalog/{categorySlug}/edit.
func (c *Catalog) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	categorySlug := chi.URLParam(r, "categorySlug")
	newName := r.FormValue("categoryName")

	cat, err := c.svc.RenameCategory(sess, categorySlug, newName)
	if err != nil {
		c.fail(w, r, err, "category", "/catalog")
		return
	}

	flash.Set(w, "Category successfully edited")
	http.Redirect(w, r, "/catalog/"+cat.Slug+"/items", http.StatusSeeOther)
}

// CategoryDelete handles POST /catalog/{categorySlug}/delete.
func (c *Catalog) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	categorySlug := chi.URLParam(r, "categorySlug")

	if err := c.svc.DeleteCategory(r.Context(), sess, categorySlug); err != nil {
		c.fail(w, r, err, "category", "/catalog")
		return
	}

	flash.Set(w, "Category successfully deleted")
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

// ItemCreate handles POST /catalog/item/new. The category comes from the
// itemCategory form field; an itemImg file is optional.
func (c *Catalog) ItemCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		flash.Set(w, "Something went wrong, please try again")
		http.Redirect(w, r, "/catalog", http.StatusSeeOther)
		return
	}

	categoryID, err := uuid.Parse(r.FormValue("itemCategory"))
	if err != nil {
		flash.Set(w, "Please pick a category for the new item")
		http.Redirect(w, r, "/catalog", http.StatusSeeOther)
		return
	}

	upload, file := formUpload(r, "itemImg")
	if file != nil {
		defer file.Close()
	}

	item, err := c.svc.CreateItem(r.Context(), sess, categoryID,
		r.FormValue("itemName"), r.FormValue("itemDescription"), upload)
	if err != nil {
		c.fail(w, r, err, "item", "/catalog")
		return
	}

	flash.Set(w, "New item "+item.Name+" successfully created")
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

// ItemEdit handles POST /catalog/{categorySlug}/items/{itemSlug}/edit.
// Empty fields leave the corresponding attribute unchanged.
func (c *Catalog) ItemEdit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	categorySlug := chi.URLParam(r, "categorySlug")
	itemSlug := chi.URLParam(r, "itemSlug")
	back := "/catalog/" + categorySlug + "/items/" + itemSlug

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		flash.Set(w, "Something went wrong, please try again")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	in := catalog.EditItemInput{
		NewName: r.FormValue("itemName"),
	}
	if raw := r.FormValue("itemCategory"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			flash.Set(w, "Something went wrong, please try again")
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		in.NewCategoryID = id
	}
	if desc := r.FormValue("itemDescription"); desc != "" {
		in.NewDescription = &desc
	}

	upload, file := formUpload(r, "itemImg")
	if file != nil {
		defer file.Close()
	}
	in.Upload = upload

	item, err := c.svc.EditItem(r.Context(), sess, categorySlug, itemSlug, in)
	if err != nil {
		c.fail(w, r, err, "item", back)
		return
	}

	flash.Set(w, "Item successfully edited")
	if in.NewCategoryID != uuid.Nil {
		// The item may have moved to another category; the catalog page is
		// the only redirect target that is always right.
		http.Redirect(w, r, "/catalog", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/catalog/"+categorySlug+"/items/"+item.Slug, http.StatusSeeOther)
}

// ItemDelete handles POST /catalog/{categorySlug}/items/{itemSlug}/delete.
func (c *Catalog) ItemDelete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	categorySlug := chi.URLParam(r, "categorySlug")
	itemSlug := chi.URLParam(r, "itemSlug")

	if err := c.svc.DeleteItem(r.Context(), sess, categorySlug, itemSlug); err != nil {
		c.fail(w, r, err, "item", "/catalog/"+categorySlug+"/items")
		return
	}

	flash.Set(w, "Item successfully deleted")
	http.Redirect(w, r, "/catalog/"+categorySlug+"/items", http.StatusSeeOther)
}

// fail maps a service error onto the flash-and-redirect pattern. Unknown
// resources become a 404 page; everything else flashes a message and sends
// the user back.
func (c *Catalog) fail(w http.ResponseWriter, r *http.Request, err error, resource, back string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		msg, _ := flash.Pop(w, r)
		c.renderer.NotFound(w, &render.PageData{
			Title:    "Not Found",
			Flash:    msg,
			LoggedIn: middleware.SessionFromCtx(r.Context()) != nil,
		})
		return
	case errors.Is(err, models.ErrNotAuthenticated):
		flash.Set(w, "You are not allowed to access this content")
	case errors.Is(err, models.ErrNotOwner):
		flash.Set(w, "You are not authorized to edit this "+resource)
	case errors.Is(err, models.ErrConflict):
		flash.Set(w, "There is already a "+resource+" with that name, please pick another one")
	case errors.Is(err, models.ErrValidation):
		flash.Set(w, "Please fill in all the required fields")
	default:
		slog.Error("catalog mutation failed", "resource", resource, "error", err)
		flash.Set(w, "Something went wrong, please try again")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// formUpload extracts the named file from a parsed multipart form. A
// missing file is not an error; the caller gets a nil upload.
func formUpload(r *http.Request, field string) (*catalog.Upload, multipart.File) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return &catalog.Upload{Filename: header.Filename, Data: file}, file
}

// Package handlers wires HTTP requests to the catalog and identity
// services. Read-only projections are public; every mutating handler runs
// behind the login gate and receives its session from the request context.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"curio/internal/flash"
	"curio/internal/middleware"
	"curio/internal/models"
	"curio/internal/render"
)

// latestItemCount is how many recent items the catalog page shows.
const latestItemCount = 5

// CatalogReader is the read-only slice of the catalog service.
type CatalogReader interface {
	Catalog() ([]models.Category, error)
	Categories() ([]models.Category, error)
	LatestItems(n int) ([]models.Item, error)
	CategoryBySlug(categorySlug string) (*models.Category, []models.Item, error)
	ItemBySlug(categorySlug, itemSlug string) (*models.Item, error)
}

// Public groups the unauthenticated read-only handlers.
type Public struct {
	catalog  CatalogReader
	renderer *render.Renderer
}

// NewPublic creates the public handler group.
func NewPublic(catalog CatalogReader, renderer *render.Renderer) *Public {
	return &Public{catalog: catalog, renderer: renderer}
}

// CatalogJSON returns the whole catalog: categories ordered by name, each
// with its items ordered by name.
func (p *Public) CatalogJSON(w http.ResponseWriter, r *http.Request) {
	cats, err := p.catalog.Catalog()
	if err != nil {
		jsonError(w, err)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	for i := range cats {
		if cats[i].Items == nil {
			cats[i].Items = []models.Item{}
		}
	}
	writeJSON(w, map[string]any{"categories": cats})
}

// CategoryItemsJSON returns a category's items, or an empty object when
// the category slug is unknown — unknown slugs are not an error here.
func (p *Public) CategoryItemsJSON(w http.ResponseWriter, r *http.Request) {
	cat, items, err := p.catalog.CategoryBySlug(chi.URLParam(r, "categorySlug"))
	if err != nil {
		jsonError(w, err)
		return
	}
	if cat == nil {
		writeJSON(w, map[string]any{})
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	writeJSON(w, map[string]any{"items": items})
}

// ItemJSON returns a single item, or an empty object when either slug is
// unknown.
func (p *Public) ItemJSON(w http.ResponseWriter, r *http.Request) {
	item, err := p.catalog.ItemBySlug(chi.URLParam(r, "categorySlug"), chi.URLParam(r, "itemSlug"))
	if err != nil {
		jsonError(w, err)
		return
	}
	if item == nil {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, map[string]any{"item": item})
}

// Root redirects to the catalog page.
func (p *Public) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

// CatalogPage shows all categories and the latest added items.
func (p *Public) CatalogPage(w http.ResponseWriter, r *http.Request) {
	cats, err := p.catalog.Categories()
	if err != nil {
		httpError(w, err)
		return
	}
	latest, err := p.catalog.LatestItems(latestItemCount)
	if err != nil {
		httpError(w, err)
		return
	}

	p.renderer.Page(w, "catalog", p.pageData(w, r, "Catalog", map[string]any{
		"Categories": cats,
		"Latest":     latest,
	}))
}

// CategoryPage shows a category's items; unknown slugs are a 404, unlike
// the JSON projection.
func (p *Public) CategoryPage(w http.ResponseWriter, r *http.Request) {
	cat, items, err := p.catalog.CategoryBySlug(chi.URLParam(r, "categorySlug"))
	if err != nil {
		httpError(w, err)
		return
	}
	if cat == nil {
		p.renderer.NotFound(w, p.pageData(w, r, "Not Found", nil))
		return
	}

	p.renderer.Page(w, "category", p.pageData(w, r, cat.Name, map[string]any{
		"Category": cat,
		"Items":    items,
	}))
}

// ItemPage shows a single item.
func (p *Public) ItemPage(w http.ResponseWriter, r *http.Request) {
	item, err := p.catalog.ItemBySlug(chi.URLParam(r, "categorySlug"), chi.URLParam(r, "itemSlug"))
	if err != nil {
		httpError(w, err)
		return
	}
	if item == nil {
		p.renderer.NotFound(w, p.pageData(w, r, "Not Found", nil))
		return
	}

	var cacheBust string
	if item.RandomString != nil {
		cacheBust = *item.RandomString
	}
	p.renderer.Page(w, "item", p.pageData(w, r, item.Name, map[string]any{
		"Item":      item,
		"CacheBust": cacheBust,
	}))
}

// pageData assembles the common page payload: flash message and login state.
func (p *Public) pageData(w http.ResponseWriter, r *http.Request, title string, data any) *render.PageData {
	msg, _ := flash.Pop(w, r)
	return &render.PageData{
		Title:    title,
		Flash:    msg,
		LoggedIn: middleware.SessionFromCtx(r.Context()) != nil,
		Data:     data,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, err error) {
	slog.Error("catalog read failed", "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
}

func httpError(w http.ResponseWriter, err error) {
	slog.Error("catalog read failed", "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

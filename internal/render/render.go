// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render produces the server's HTML pages. The pages are a thin
// read-only projection of catalog state; all interesting behavior lives in
// the JSON endpoints and form handlers.
package render

import (
	"html/template"
	"log/slog"
	"net/http"
)

// PageData is the payload every page template receives.
type PageData struct {
	Title    string
	Flash    string
	LoggedIn bool
	Data     any
}

// Renderer holds the parsed page templates.
type Renderer struct {
	templates *template.Template
}

// New parses the built-in page templates.
func New() (*Renderer, error) {
	t, err := template.New("pages").Parse(pageTemplates)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

// Page renders the named template with data. Render failures are logged
// and surface as a 500 if nothing was written yet.
func (rn *Renderer) Page(w http.ResponseWriter, name string, data *PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rn.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// NotFound renders the 404 page.
func (rn *Renderer) NotFound(w http.ResponseWriter, data *PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := rn.templates.ExecuteTemplate(w, "404", data); err != nil {
		slog.Error("template render failed", "template", "404", "error", err)
	}
}

const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{if .Flash}}<p class="flash">{{.Flash}}</p>{{end}}
{{end}}

{{define "foot"}}</body></html>{{end}}

{{define "catalog"}}{{template "head" .}}
<h1>Catalog</h1>
<ul class="categories">
{{range .Data.Categories}}<li><a href="/catalog/{{.Slug}}/items">{{.Name}}</a></li>
{{end}}</ul>
<h2>Latest items</h2>
<ul class="items">
{{range .Data.Latest}}<li>{{.Name}}</li>
{{end}}</ul>
{{template "foot" .}}{{end}}

{{define "category"}}{{template "head" .}}
<h1>{{.Data.Category.Name}}</h1>
<ul class="items">
{{range .Data.Items}}<li><a href="/catalog/{{$.Data.Category.Slug}}/items/{{.Slug}}">{{.Name}}</a></li>
{{end}}</ul>
{{template "foot" .}}{{end}}

{{define "item"}}{{template "head" .}}
<h1>{{.Data.Item.Name}}</h1>
{{if .Data.Item.Image}}<img src="/uploads/{{.Data.Item.Image}}{{if .Data.CacheBust}}?v={{.Data.CacheBust}}{{end}}" alt="{{.Data.Item.Name}}">{{end}}
<p>{{.Data.Item.Description}}</p>
{{template "foot" .}}{{end}}

{{define "404"}}{{template "head" .}}
<h1>Page not found</h1>
<p><a href="/catalog">Back to the catalog</a></p>
{{template "foot" .}}{{end}}
`

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups items under a unique, name-derived slug.
// The slug is unique across all categories.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"ownerId"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Items is populated by store methods that load the full catalog.
	Items []Item `json:"items"`
}

// Item is a catalog entry. The (CategoryID, Slug) pair is unique, so item
// names may collide across categories but not within one.
type Item struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"categoryId"`
	Image       *string   `json:"image"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"ownerId"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// RandomString is a short disambiguator minted whenever an image is
	// freshly attached. Used only for cache-busting of the asset URL and
	// never serialized.
	RandomString *string `json:"-"`
}

// HasImage reports whether the item carries an uploaded image file.
func (i *Item) HasImage() bool {
	return i.Image != nil && *i.Image != ""
}

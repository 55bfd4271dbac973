package assets

import (
	"errors"
	"testing"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		categorySlug string
		itemSlug     string
		want         string
	}{
		{"snowboarding", "snowboard", "snowboarding__snowboard.jpg"},
		{"ski-gear", "full-face-helmet", "ski-gear__full-face-helmet.jpg"},
	}

	for _, tt := range tests {
		got := Filename(tt.categorySlug, tt.itemSlug)
		if got != tt.want {
			t.Errorf("Filename(%q, %q) = %q, want %q", tt.categorySlug, tt.itemSlug, got, tt.want)
		}
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"photo.png", true},
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"PHOTO.PNG", true},
		{"photo.JpG", true},
		{"photo.gif", false},
		{"photo.svg", false},
		{"archive.tar.gz", false},
		{"noextension", false},
		{"", false},
		{".jpg", true},
	}

	for _, tt := range tests {
		if got := Allowed(tt.filename); got != tt.want {
			t.Errorf("Allowed(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := &Error{Op: "store", Filename: "a__b.jpg", Err: inner}

	if !errors.Is(err, inner) {
		t.Errorf("errors.Is(err, inner) = false, want true")
	}
	want := "asset store a__b.jpg: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

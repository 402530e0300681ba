// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"testing"
)

func TestSlugFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "cover.jpg", "cover.jpg"},
		{"spaces and case", "My Best Dish.PNG", "my-best-dish.png"},
		{"accents", "Crème Brûlée.jpeg", "creme-brulee.jpeg"},
		{"no extension", "photo", "photo.jpg"},
		{"strange extension", "photo.exe", "photo.jpg"},
		{"only symbols", "!!!.png", "cover.png"},
		{"path traversal", "../../etc/passwd.png", "passwd.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slugFilename(tt.input); got != tt.want {
				t.Errorf("slugFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMimeTypeFromExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"a.png", "image/png"},
		{"a.gif", "image/gif"},
		{"a.webp", "image/webp"},
		{"a.pdf", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := mimeTypeFromExtension(tt.filename); got != tt.want {
				t.Errorf("mimeTypeFromExtension(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestUUIDFromImagePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			"valid path",
			"/uploads/originals/6ba7b810-9dad-11d1-80b4-00c04fd430c8/cover.jpg",
			"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{"not an upload", "/static/dist/style.css", ""},
		{"bad uuid", "/uploads/originals/not-a-uuid/cover.jpg", ""},
		{"empty", "", ""},
		{"wrong depth", "/uploads/originals/cover.jpg", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UUIDFromImagePath(tt.path); got != tt.want {
				t.Errorf("UUIDFromImagePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

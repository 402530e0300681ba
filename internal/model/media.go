// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Supported image MIME types for meal cover uploads.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Image variant names.
const (
	VariantThumbnail = "thumbnail"
)

// ImageVariantConfig describes how a resized variant is produced.
type ImageVariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool
}

// ImageVariants defines the resized versions generated for each
// uploaded cover image. Thumbnails are cropped so the menu grid
// renders uniform cards.
var ImageVariants = map[string]ImageVariantConfig{
	VariantThumbnail: {Width: 320, Height: 240, Quality: 80, Crop: true},
}

// IsSupportedMimeType reports whether mimeType can be uploaded as a
// meal cover image.
func IsSupportedMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

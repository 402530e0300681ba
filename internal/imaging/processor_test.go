// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dkhalife/sufra/internal/model"
)

// testImage returns an encoded solid-color image of the given size.
func testImage(t *testing.T, width, height int, format string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcessImage(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := testImage(t, 100, 80, "jpeg")

	result, err := p.ProcessImage(bytes.NewReader(data), "test-uuid", "cover.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	if result.Width != 100 || result.Height != 80 {
		t.Errorf("dimensions = %dx%d, want 100x80", result.Width, result.Height)
	}
	if result.MimeType != model.MimeTypeJPEG {
		t.Errorf("MimeType = %q, want %q", result.MimeType, model.MimeTypeJPEG)
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("original file not saved: %v", err)
	}
}

func TestProcessImage_PNG(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := testImage(t, 50, 50, "png")

	result, err := p.ProcessImage(bytes.NewReader(data), "png-uuid", "cover.png")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if result.MimeType != model.MimeTypePNG {
		t.Errorf("MimeType = %q, want %q", result.MimeType, model.MimeTypePNG)
	}
}

func TestProcessImage_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	_, err := p.ProcessImage(bytes.NewReader([]byte("not an image")), "bad-uuid", "cover.jpg")
	if err == nil {
		t.Fatal("expected error for non-image data")
	}
}

func TestCreateAllVariants(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	// Large enough that every variant gets generated
	data := testImage(t, 1600, 1200, "jpeg")

	result, err := p.ProcessImage(bytes.NewReader(data), "variant-uuid", "cover.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	variants, err := p.CreateAllVariants(result.FilePath, "variant-uuid", "cover.jpg")
	if err != nil {
		t.Fatalf("CreateAllVariants: %v", err)
	}

	if len(variants) != len(model.ImageVariants) {
		t.Errorf("len(variants) = %d, want %d", len(variants), len(model.ImageVariants))
	}

	for _, v := range variants {
		if _, err := os.Stat(v.FilePath); err != nil {
			t.Errorf("variant %s not saved: %v", v.Type, err)
		}
		cfg := model.ImageVariants[v.Type]
		if cfg.Crop && (v.Width != cfg.Width || v.Height != cfg.Height) {
			t.Errorf("cropped variant %s = %dx%d, want %dx%d", v.Type, v.Width, v.Height, cfg.Width, cfg.Height)
		}
	}
}

func TestCreateVariant_SkipsSmallSource(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := testImage(t, 100, 80, "jpeg")
	result, err := p.ProcessImage(bytes.NewReader(data), "small-uuid", "cover.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	// A fit variant larger than the source is skipped instead of upscaled
	cfg := model.ImageVariantConfig{Width: 960, Height: 720, Quality: 85}
	v, err := p.CreateVariant(result.FilePath, "small-uuid", "cover.jpg", cfg, "large")
	if err != nil {
		t.Fatalf("CreateVariant: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil variant for small source, got %+v", v)
	}
}

func TestDeleteImageFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := testImage(t, 1600, 1200, "jpeg")
	result, err := p.ProcessImage(bytes.NewReader(data), "delete-uuid", "cover.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if _, err := p.CreateAllVariants(result.FilePath, "delete-uuid", "cover.jpg"); err != nil {
		t.Fatalf("CreateAllVariants: %v", err)
	}

	if err := p.DeleteImageFiles("delete-uuid"); err != nil {
		t.Fatalf("DeleteImageFiles: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "originals", "delete-uuid")); !os.IsNotExist(err) {
		t.Error("originals directory should be removed")
	}
}

func TestIsImage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	tests := []struct {
		mimeType string
		want     bool
	}{
		{model.MimeTypeJPEG, true},
		{model.MimeTypePNG, true},
		{model.MimeTypeGIF, true},
		{model.MimeTypeWebP, true},
		{"application/pdf", false},
		{"text/html", false},
	}

	for _, tt := range tests {
		if got := p.IsImage(tt.mimeType); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}

func TestSaveImageFile_PathTraversal(t *testing.T) {
	p := NewProcessor(t.TempDir())

	_, err := p.saveImageFile("../escape", "cover.jpg", []byte("data"))
	if err == nil {
		t.Fatal("expected error for path traversal subDir")
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dkhalife/sufra/internal/imaging"
	"github.com/dkhalife/sufra/internal/model"
	"github.com/dkhalife/sufra/internal/util"
)

// Upload limits
const (
	MaxUploadSize    = 10 * 1024 * 1024 // 10MB
	DefaultUploadDir = "./uploads"
)

// UploadResult contains the stored paths for a processed cover image.
type UploadResult struct {
	// UUID identifies the upload directory and is used for cleanup.
	UUID string
	// ImagePath is the public URL path of the processed original. The
	// thumbnail lives at the same path under /uploads/thumbnail/.
	ImagePath string
	Width     int
	Height    int
	Size      int64
}

// MediaService handles meal cover image uploads.
type MediaService struct {
	processor *imaging.Processor
	uploadDir string
}

// NewMediaService creates a new media service.
func NewMediaService(uploadDir string) *MediaService {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	return &MediaService{
		processor: imaging.NewProcessor(uploadDir),
		uploadDir: uploadDir,
	}
}

// UploadCoverImage validates, processes, and stores a cover image.
// Each upload gets its own UUID directory so filenames never collide.
func (s *MediaService) UploadCoverImage(file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	// Validate file size
	if header.Size > MaxUploadSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	// Detect and validate MIME type
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromExtension(header.Filename)
	}
	if !model.IsSupportedMimeType(mimeType) {
		return nil, fmt.Errorf("file type %s is not allowed", mimeType)
	}

	fileUUID := uuid.New().String()
	filename := slugFilename(header.Filename)

	// Process and save the original
	processResult, err := s.processor.ProcessImage(file, fileUUID, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	result := &UploadResult{
		UUID:      fileUUID,
		ImagePath: fmt.Sprintf("/uploads/originals/%s/%s", fileUUID, filename),
		Width:     processResult.Width,
		Height:    processResult.Height,
		Size:      processResult.Size,
	}

	// Create the thumbnail; a failed variant is not fatal
	_, _ = s.processor.CreateAllVariants(processResult.FilePath, fileUUID, filename)

	return result, nil
}

// Delete removes all stored files for an upload.
func (s *MediaService) Delete(uploadUUID string) error {
	return s.processor.DeleteImageFiles(uploadUUID)
}

// DeleteByImagePath removes the stored files referenced by a public
// image path of the form /uploads/originals/<uuid>/<filename>.
func (s *MediaService) DeleteByImagePath(imagePath string) error {
	uploadUUID := UUIDFromImagePath(imagePath)
	if uploadUUID == "" {
		return nil
	}
	return s.processor.DeleteImageFiles(uploadUUID)
}

// UUIDFromImagePath extracts the upload UUID from a public image path.
// Returns empty string if the path does not look like an upload path.
func UUIDFromImagePath(imagePath string) string {
	parts := strings.Split(strings.Trim(imagePath, "/"), "/")
	// uploads/originals/<uuid>/<filename>
	if len(parts) != 4 || parts[0] != "uploads" {
		return ""
	}
	if _, err := uuid.Parse(parts[2]); err != nil {
		return ""
	}
	return parts[2]
}

// slugFilename converts an uploaded filename into a safe slug while
// keeping a recognized image extension.
func slugFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	slug := util.Slugify(base)
	if slug == "" {
		slug = "cover"
	}

	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		ext = ".jpg"
	}

	return slug + ext
}

// mimeTypeFromExtension guesses the MIME type from a filename extension.
func mimeTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return model.MimeTypeJPEG
	case ".png":
		return model.MimeTypePNG
	case ".gif":
		return model.MimeTypeGIF
	case ".webp":
		return model.MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic and service layer functionality
// including event logging and image upload handling.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"

	"github.com/dkhalife/sufra/internal/model"
	"github.com/dkhalife/sufra/internal/store"
)

// EventService provides event logging functionality.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// LogEvent creates a new event log entry. The ipAddress and path are
// recorded in the metadata alongside any caller-supplied keys.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress, path string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	merged := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		merged[k] = v
	}
	if ipAddress != "" {
		merged["ip_address"] = ipAddress
	}
	if path != "" {
		merged["path"] = path
	}

	metadataJSON := "{}"
	if len(merged) > 0 {
		jsonBytes, err := json.Marshal(merged)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:    level,
		Category: category,
		Message:  message,
		UserID:   nullUserID,
		Metadata: metadataJSON,
	})
	if err != nil {
		log.Printf("Failed to log event: %v", err)
		return err
	}

	return nil
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress, path string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, ipAddress, path, metadata)
}

// LogMealEvent logs a meal catalog event.
func (s *EventService) LogMealEvent(ctx context.Context, level, message string, userID *int64, ipAddress, path string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryMeal, message, userID, ipAddress, path, metadata)
}

// LogCommentEvent logs a comment-related event.
func (s *EventService) LogCommentEvent(ctx context.Context, level, message string, userID *int64, ipAddress, path string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryComment, message, userID, ipAddress, path, metadata)
}

// LogUserEvent logs a user-related event.
func (s *EventService) LogUserEvent(ctx context.Context, level, message string, userID *int64, ipAddress, path string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryUser, message, userID, ipAddress, path, metadata)
}

// LogSystemEvent logs a system-related event.
func (s *EventService) LogSystemEvent(ctx context.Context, level, message string, userID *int64, ipAddress, path string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategorySystem, message, userID, ipAddress, path, metadata)
}

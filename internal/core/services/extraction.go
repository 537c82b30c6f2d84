package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driving"
	"github.com/Yukio-aki/ai-office/internal/logger"
	"github.com/Yukio-aki/ai-office/internal/salvage"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// ExtractionService merges Extractor output into requirement profiles.
type ExtractionService struct {
	extractor driven.Extractor
}

// NewExtractionService creates an extraction service.
func NewExtractionService(extractor driven.Extractor) *ExtractionService {
	return &ExtractionService{extractor: extractor}
}

// Extract calls the Extractor with the message and the current profile as
// context, then merges the result into a copy of the profile.
// The input profile is not modified.
func (s *ExtractionService) Extract(
	ctx context.Context,
	message string,
	profile *domain.RequirementProfile,
) (*domain.RequirementProfile, domain.Extraction) {
	if profile == nil {
		profile = domain.NewRequirementProfile()
	}
	updated := profile.Clone()

	extraction := s.extract(ctx, message, updated)
	updated.Merge(extraction)

	logger.Debug("extraction: confidence %.0f%%, type=%s", updated.Confidence(), updated.ProjectType)
	return updated, extraction
}

func (s *ExtractionService) extract(ctx context.Context, message string, profile *domain.RequirementProfile) domain.Extraction {
	if s.extractor == nil {
		return domain.NullExtraction()
	}

	contextJSON, err := json.Marshal(profile)
	if err != nil {
		contextJSON = []byte("{}")
	}

	raw, err := s.extractor.Extract(ctx, message, string(contextJSON))
	if err != nil {
		logger.Warn("extraction: extractor failed: %v", err)
		return domain.NullExtraction()
	}

	extraction, err := ParseExtraction(raw)
	if err != nil {
		logger.Debug("extraction: %v", err)
		return domain.NullExtraction()
	}
	return extraction
}

// ParseExtraction decodes the first JSON object in raw Extractor output.
// Returns domain.ErrParseFailure when no object can be decoded.
func ParseExtraction(raw string) (domain.Extraction, error) {
	var obj map[string]any
	if err := salvage.DecodeObject(raw, &obj); err != nil {
		return domain.NullExtraction(), fmt.Errorf("%w: %w", domain.ErrParseFailure, err)
	}

	e := domain.Extraction{
		ProjectType:    stringOf(obj["project_type"]),
		Technologies:   stringsOf(obj["technologies"]),
		Forbidden:      stringsOf(obj["forbidden"]),
		Colors:         stringsOf(obj["colors"]),
		Style:          stringOf(obj["style"]),
		AnimationSpeed: stringOf(obj["animation_speed"]),
		Features:       stringsOf(obj["features"]),
		Mood:           stringOf(obj["mood"]),
		Examples:       stringsOf(obj["examples"]),
		References:     stringsOf(obj["references"]),
		Confidence:     floatOf(obj["confidence"]),
		MissingInfo:    stringsOf(obj["missing_info"]),
	}
	if has, ok := obj["has_examples"].(bool); ok {
		e.HasExamples = has
	}
	return e, nil
}

// Copyright (c) 2026 MindMeld. All rights reserved.

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/mindmeld/server/internal/platform/dberr"
	"github.com/mindmeld/server/internal/platform/validate"
	"github.com/mindmeld/server/pkg/pagination"
	"github.com/mindmeld/server/pkg/pointer"
	"github.com/mindmeld/server/pkg/uuid"
)

// Service implements profile, achievement, and feedback use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

/*
Get returns the full profile for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: Hydrated entity
  - err: NotFound or storage errors
*/
func (service *Service) Get(context context.Context, userID string) (*Profile, error) {
	profile, err := service.repository.GetProfile(context, userID)
	if err != nil {
		return nil, err
	}
	return withDerived(profile), nil
}

// withDerived fills the response-only fields computed from stored counters.
func withDerived(profile *Profile) *Profile {
	profile.XPToNextLevel = profile.Level*XPPerLevel - profile.XP
	if profile.GamesPlayed == nil {
		profile.GamesPlayed = map[string]int{}
	}
	return profile
}

// # Profile Editing

// UpdateInput carries the optional identity fields of a PATCH request.
// Nil fields are left unchanged.
type UpdateInput struct {
	Username   *string
	Age        *int
	Profession *string
}

/*
Update applies a partial edit to the user-editable identity fields.

Description: Reads the current profile, overlays the provided fields, and
persists the merged result. Unique violations surface as Conflict.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateInput

Returns:
  - *Profile: Updated entity
  - err: NotFound, Conflict, or storage errors
*/
func (service *Service) Update(context context.Context, userID string, input UpdateInput) (*Profile, error) {
	current, err := service.repository.GetProfile(context, userID)
	if err != nil {
		return nil, err
	}

	username := pointer.Fallback(input.Username, current.Username)
	age := pointer.Fallback(input.Age, current.Age)
	profession := current.Profession
	if input.Profession != nil {
		profession = input.Profession
	}

	if err := service.repository.UpdateIdentity(context, userID, username, age, profession); err != nil {
		return nil, dberr.Wrap(err, "profile_update")
	}

	return service.Get(context, userID)
}

// # Achievements

// Achievement pairs a catalog entry with the user's earned state.
type Achievement struct {
	BadgeDefinition
	Earned    bool       `json:"earned"`
	AwardedAt *time.Time `json:"awarded_at,omitempty"`
}

/*
Achievements returns the full badge catalog annotated with the user's progress.

Description: Every defined badge appears exactly once; earned entries carry
their award timestamp.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []Achievement: Catalog in display order
  - err: Storage errors
*/
func (service *Service) Achievements(context context.Context, userID string) ([]Achievement, error) {
	earned, err := service.repository.ListBadges(context, userID)
	if err != nil {
		return nil, fmt.Errorf("profile_service_achievements_failed: %w", err)
	}

	awardedAt := make(map[string]time.Time, len(earned))
	for _, badge := range earned {
		awardedAt[badge.Slug] = badge.AwardedAt
	}

	catalog := Catalog()
	achievements := make([]Achievement, 0, len(catalog))
	for _, definition := range catalog {
		achievement := Achievement{BadgeDefinition: definition}
		if timestamp, ok := awardedAt[definition.Slug]; ok {
			achievement.Earned = true
			achievement.AwardedAt = &timestamp
		}
		achievements = append(achievements, achievement)
	}

	return achievements, nil
}

// # Feedback

// FeedbackInput carries a feedback submission. Rating is optional.
type FeedbackInput struct {
	Category string
	Message  string
	Rating   *int
}

/*
SubmitFeedback validates and persists a product feedback entry for the user.

Parameters:
  - context: context.Context
  - userID: string
  - input: FeedbackInput

Returns:
  - *Feedback: Created entity
  - err: Validation or storage errors
*/
func (service *Service) SubmitFeedback(context context.Context, userID string, input FeedbackInput) (*Feedback, error) {
	validator := &validate.Validator{}
	validator.Required(FieldCategory, input.Category).
		OneOf(FieldCategory, input.Category, FeedbackCategoryBug, FeedbackCategoryFeature, FeedbackCategoryGeneral).
		Required(FieldMessage, input.Message).
		MinLen(FieldMessage, input.Message, FeedbackMessageMinLen).
		MaxLen(FieldMessage, input.Message, FeedbackMessageMaxLen)
	if input.Rating != nil {
		validator.Range(FieldRating, *input.Rating, 1, 5)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	feedback := &Feedback{
		ID:       uuid.New(),
		UserID:   userID,
		Category: input.Category,
		Message:  input.Message,
		Rating:   input.Rating,
	}

	if err := service.repository.CreateFeedback(context, feedback); err != nil {
		return nil, fmt.Errorf("profile_service_submit_feedback_failed: %w", err)
	}

	return feedback, nil
}

/*
ListFeedback returns a page of feedback submissions for review.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Feedback: Page of submissions
  - pagination.Meta: Paging metadata
  - err: Storage errors
*/
func (service *Service) ListFeedback(context context.Context, params pagination.Params) ([]Feedback, pagination.Meta, error) {
	items, total, err := service.repository.ListFeedback(context, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("profile_service_list_feedback_failed: %w", err)
	}

	return items, pagination.NewMeta(params.Page, params.Limit, total), nil
}

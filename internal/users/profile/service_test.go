// Copyright (c) 2026 MindMeld. All rights reserved.

package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindmeld/server/internal/platform/apperr"
	"github.com/mindmeld/server/pkg/pagination"
	"github.com/mindmeld/server/pkg/pointer"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	profiles map[string]*Profile
	badges   map[string][]Badge
	feedback []Feedback
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		profiles: map[string]*Profile{},
		badges:   map[string][]Badge{},
	}
}

func (f *fakeRepository) GetProfile(_ context.Context, userID string) (*Profile, error) {
	if profile, ok := f.profiles[userID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, apperr.NotFound("Profile not found")
}

func (f *fakeRepository) UpdateIdentity(_ context.Context, userID, username string, age int, profession *string) error {
	profile, ok := f.profiles[userID]
	if !ok {
		return apperr.NotFound("Profile not found")
	}
	profile.Username = username
	profile.Age = age
	profile.Profession = profession
	return nil
}

func (f *fakeRepository) ListBadges(_ context.Context, userID string) ([]Badge, error) {
	return f.badges[userID], nil
}

func (f *fakeRepository) CreateFeedback(_ context.Context, feedback *Feedback) error {
	f.feedback = append(f.feedback, *feedback)
	return nil
}

func (f *fakeRepository) ListFeedback(_ context.Context, _ pagination.Params) ([]Feedback, int, error) {
	return f.feedback, len(f.feedback), nil
}

func seedProfile(repository *fakeRepository) *Profile {
	profile := &Profile{
		ID:            "user-1",
		Username:      "brainiac",
		Email:         "brainiac@example.com",
		Age:           28,
		XP:            350,
		Level:         1,
		CurrentStreak: 3,
		TotalSessions: 5,
		AverageScore:  72.4,
	}
	repository.profiles[profile.ID] = profile
	return profile
}

func TestService_Update_PartialFields(t *testing.T) {
	repository := newFakeRepository()
	seedProfile(repository)
	service := NewService(repository)

	tests := []struct {
		name         string
		input        UpdateInput
		wantUsername string
		wantAge      int
	}{
		{
			name:         "username only",
			input:        UpdateInput{Username: pointer.To("neuron")},
			wantUsername: "neuron",
			wantAge:      28,
		},
		{
			name:         "age only",
			input:        UpdateInput{Age: pointer.To(34)},
			wantUsername: "neuron",
			wantAge:      34,
		},
		{
			name:         "empty patch is a no-op",
			input:        UpdateInput{},
			wantUsername: "neuron",
			wantAge:      34,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			updated, err := service.Update(context.Background(), "user-1", testCase.input)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantUsername, updated.Username)
			assert.Equal(t, testCase.wantAge, updated.Age)
		})
	}
}

func TestService_Update_Profession(t *testing.T) {
	repository := newFakeRepository()
	seedProfile(repository)
	service := NewService(repository)

	updated, err := service.Update(context.Background(), "user-1", UpdateInput{
		Profession: pointer.To("engineer"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Profession)
	assert.Equal(t, "engineer", *updated.Profession)
	assert.Equal(t, "brainiac", updated.Username, "untouched fields survive")
}

func TestService_Get_DerivedFields(t *testing.T) {
	repository := newFakeRepository()
	seedProfile(repository)
	service := NewService(repository)

	profile, err := service.Get(context.Background(), "user-1")
	require.NoError(t, err)

	// Level 1 spans [0, 1000); 350 XP leaves 650 to the next level.
	assert.Equal(t, 650, profile.XPToNextLevel)
	assert.NotNil(t, profile.GamesPlayed)
}

func TestService_Update_UnknownUser(t *testing.T) {
	service := NewService(newFakeRepository())

	_, err := service.Update(context.Background(), "ghost", UpdateInput{Username: pointer.To("x")})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)
}

func TestService_Achievements_AnnotatesEarnedState(t *testing.T) {
	repository := newFakeRepository()
	profile := seedProfile(repository)
	awardedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repository.badges[profile.ID] = []Badge{
		{ID: "badge-1", UserID: profile.ID, Slug: BadgeFirstSession, AwardedAt: awardedAt},
		{ID: "badge-2", UserID: profile.ID, Slug: BadgeStreak7, AwardedAt: awardedAt},
	}
	service := NewService(repository)

	achievements, err := service.Achievements(context.Background(), profile.ID)
	require.NoError(t, err)

	require.Len(t, achievements, len(Catalog()), "every catalog badge appears exactly once")

	earned := map[string]bool{}
	for _, achievement := range achievements {
		earned[achievement.Slug] = achievement.Earned
		if achievement.Earned {
			require.NotNil(t, achievement.AwardedAt)
			assert.Equal(t, awardedAt, *achievement.AwardedAt)
		} else {
			assert.Nil(t, achievement.AwardedAt)
		}
	}

	assert.True(t, earned[BadgeFirstSession])
	assert.True(t, earned[BadgeStreak7])
	assert.False(t, earned[BadgeSessions100])
}

func TestService_SubmitFeedback(t *testing.T) {
	repository := newFakeRepository()
	seedProfile(repository)
	service := NewService(repository)

	feedback, err := service.SubmitFeedback(context.Background(), "user-1", FeedbackInput{
		Category: FeedbackCategoryFeature,
		Message:  "Add a dark theme",
		Rating:   pointer.To(4),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, feedback.ID)
	assert.Equal(t, "user-1", feedback.UserID)
	assert.Len(t, repository.feedback, 1)
}

func TestService_SubmitFeedback_RatingOptional(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)

	feedback, err := service.SubmitFeedback(context.Background(), "user-1", FeedbackInput{
		Category: FeedbackCategoryGeneral,
		Message:  "Keeps my commute interesting",
	})

	require.NoError(t, err)
	assert.Nil(t, feedback.Rating)
}

func TestService_SubmitFeedback_Validation(t *testing.T) {
	tests := []struct {
		name      string
		input     FeedbackInput
		wantField string
	}{
		{
			name:      "unknown category",
			input:     FeedbackInput{Category: "rant", Message: "long enough message"},
			wantField: FieldCategory,
		},
		{
			name:      "message too short",
			input:     FeedbackInput{Category: FeedbackCategoryBug, Message: "a"},
			wantField: FieldMessage,
		},
		{
			name:      "rating out of range",
			input:     FeedbackInput{Category: FeedbackCategoryBug, Message: "crashes on level up", Rating: pointer.To(6)},
			wantField: FieldRating,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repository := newFakeRepository()
			service := NewService(repository)

			_, err := service.SubmitFeedback(context.Background(), "user-1", testCase.input)

			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			require.NotEmpty(t, appError.Details)
			assert.Equal(t, testCase.wantField, appError.Details[0].Field)
			assert.Empty(t, repository.feedback, "invalid submissions must not be stored")
		})
	}
}

func TestService_ListFeedback_Meta(t *testing.T) {
	repository := newFakeRepository()
	repository.feedback = []Feedback{
		{ID: "f1", UserID: "user-1", Category: FeedbackCategoryBug, Message: "broken", Rating: pointer.To(2)},
		{ID: "f2", UserID: "user-2", Category: FeedbackCategoryGeneral, Message: "love it", Rating: pointer.To(5)},
	}
	service := NewService(repository)

	items, meta, err := service.ListFeedback(context.Background(), pagination.Params{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, 1, meta.TotalPages)
}

func TestDefinition(t *testing.T) {
	definition, ok := Definition(BadgePerfectScore)
	require.True(t, ok)
	assert.Equal(t, "Perfectionist", definition.Name)
	assert.Equal(t, BadgeXPBonus, definition.XPBonus)

	_, ok = Definition("nonexistent")
	assert.False(t, ok)
}

// Copyright (c) 2026 MindMeld. All rights reserved.

/*
Package ml is the boundary to the machine-learning inference service.

The inference service is a separate deployment reached over HTTP. This
package defines the request/response contracts, a real [HTTPClient], a
[Fallback] decorator that degrades to local heuristics when the service is
unreachable, and a [Static] double for tests.

# Architecture

Consumers depend on the [Client] interface only. Inference must never take
a user-facing request down: wrap the real client in [NewFallback] so every
call has a deterministic local answer when the service misbehaves.
*/
package ml

import "context"

// # Contracts

// Client is the inference contract consumed by the domain services.
type Client interface {

	/*
		Classify assigns a skill label to a user based on their aggregates.

		Parameters:
		  - context: context.Context
		  - input: ClassifyInput

		Returns:
		  - *Classification: Skill label with confidence
		  - error: Transport or service failures
	*/
	Classify(context context.Context, input ClassifyInput) (*Classification, error)

	/*
		Recommend suggests the next training focus for a user.

		Parameters:
		  - context: context.Context
		  - input: RecommendInput

		Returns:
		  - *Recommendation: Focus domain and difficulty suggestion
		  - error: Transport or service failures
	*/
	Recommend(context context.Context, input RecommendInput) (*Recommendation, error)

	/*
		Predict estimates the user's next score for a game.

		Parameters:
		  - context: context.Context
		  - input: PredictInput

		Returns:
		  - *Prediction: Estimated score with confidence
		  - error: Transport or service failures
	*/
	Predict(context context.Context, input PredictInput) (*Prediction, error)
}

// # Skill Labels

const (
	LabelBeginner     = "Beginner"
	LabelIntermediate = "Intermediate"
	LabelAdvanced     = "Advanced"
	LabelExpert       = "Expert"
)

// # Payloads

// ClassifyInput carries the user aggregates the classifier consumes.
type ClassifyInput struct {
	UserID        string  `json:"user_id"`
	AverageScore  float64 `json:"average_score"`
	TotalSessions int     `json:"total_sessions"`
	CurrentStreak int     `json:"current_streak"`
}

// Classification is the classifier's verdict.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// RecommendInput carries per-domain averages for the recommender.
type RecommendInput struct {
	UserID         string             `json:"user_id"`
	DomainAverages map[string]float64 `json:"domain_averages"`
	AverageScore   float64            `json:"average_score"`
}

// Recommendation is the recommender's suggestion.
type Recommendation struct {
	FocusDomain string  `json:"focus_domain"`
	Difficulty  string  `json:"difficulty"`
	Reason      string  `json:"reason"`
	Confidence  float64 `json:"confidence"`
}

// PredictInput carries the recent score history for the predictor.
// RecentScores is ordered newest first.
type PredictInput struct {
	UserID       string    `json:"user_id"`
	GameID       string    `json:"game_id"`
	RecentScores []float64 `json:"recent_scores"`
}

// Prediction is the predictor's score estimate.
type Prediction struct {
	PredictedScore float64 `json:"predicted_score"`
	Confidence     float64 `json:"confidence"`
}

// Insights bundles the classification and recommendation computed from a
// user's stored history.
type Insights struct {
	Classification Classification `json:"classification"`
	Recommendation Recommendation `json:"recommendation"`
}

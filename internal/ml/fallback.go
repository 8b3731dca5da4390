// Copyright (c) 2026 MindMeld. All rights reserved.

package ml

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
)

// Fallback decorates a [Client] with local heuristics so inference outages
// degrade gracefully instead of failing user-facing requests.
//
// Confidence on heuristic answers is deliberately low so downstream consumers
// can tell the two sources apart.
type Fallback struct {
	inner  Client
	logger *slog.Logger
	random *rand.Rand
}

// heuristicConfidence marks answers produced locally rather than by the model.
const heuristicConfidence = 0.5

// NewFallback wraps an inference client with local heuristics.
func NewFallback(inner Client, logger *slog.Logger) *Fallback {
	return &Fallback{
		inner:  inner,
		logger: logger,
		random: rand.New(rand.NewSource(rand.Int63())),
	}
}

// Classify delegates to the service, falling back to score thresholds.
func (fallback *Fallback) Classify(context context.Context, input ClassifyInput) (*Classification, error) {
	result, err := fallback.inner.Classify(context, input)
	if err == nil {
		return result, nil
	}

	fallback.logger.Warn("ml_classify_fallback", slog.Any("error", err))
	return &Classification{
		Label:      ClassifyLocally(input.AverageScore),
		Confidence: heuristicConfidence,
	}, nil
}

// Recommend delegates to the service, falling back to the weakest domain.
func (fallback *Fallback) Recommend(context context.Context, input RecommendInput) (*Recommendation, error) {
	result, err := fallback.inner.Recommend(context, input)
	if err == nil {
		return result, nil
	}

	fallback.logger.Warn("ml_recommend_fallback", slog.Any("error", err))
	return RecommendLocally(input), nil
}

// Predict delegates to the service, falling back to the jittered last score.
func (fallback *Fallback) Predict(context context.Context, input PredictInput) (*Prediction, error) {
	result, err := fallback.inner.Predict(context, input)
	if err == nil {
		return result, nil
	}

	fallback.logger.Warn("ml_predict_fallback", slog.Any("error", err))

	last := latestScore(input.RecentScores)
	// Jitter the most recent score by a uniform offset in [-5, +5]
	predicted := clamp(last+(fallback.random.Float64()*10-5), 0, 100)

	return &Prediction{
		PredictedScore: predicted,
		Confidence:     heuristicConfidence,
	}, nil
}

// # Local Heuristics

// ClassifyLocally maps an average score onto a skill label.
// Tier boundaries: below 55 beginner, below 70 intermediate, below 85
// advanced, expert otherwise.
func ClassifyLocally(averageScore float64) string {
	switch {
	case averageScore < 55:
		return LabelBeginner
	case averageScore < 70:
		return LabelIntermediate
	case averageScore < 85:
		return LabelAdvanced
	default:
		return LabelExpert
	}
}

// RecommendLocally suggests focusing on the weakest domain at a difficulty
// matched to the user's overall level.
func RecommendLocally(input RecommendInput) *Recommendation {
	focus := weakestDomain(input.DomainAverages)

	difficulty := "easy"
	switch {
	case input.AverageScore > 75:
		difficulty = "hard"
	case input.AverageScore >= 50:
		difficulty = "medium"
	}

	return &Recommendation{
		FocusDomain: focus,
		Difficulty:  difficulty,
		Reason:      "Lowest average score among your trained domains",
		Confidence:  heuristicConfidence,
	}
}

// weakestDomain returns the domain with the lowest average.
// Iteration order over maps is random, so ties are broken alphabetically
// to keep the answer stable.
func weakestDomain(averages map[string]float64) string {
	if len(averages) == 0 {
		return ""
	}

	domains := make([]string, 0, len(averages))
	for domain := range averages {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	weakest := domains[0]
	for _, domain := range domains[1:] {
		if averages[domain] < averages[weakest] {
			weakest = domain
		}
	}
	return weakest
}

// latestScore returns the most recent entry of a newest-first score list.
func latestScore(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[0]
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

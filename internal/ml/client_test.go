// Copyright (c) 2026 MindMeld. All rights reserved.

package ml

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/classify", request.URL.Path)
		assert.Equal(t, http.MethodPost, request.Method)

		body, err := io.ReadAll(request.Body)
		require.NoError(t, err)
		var input ClassifyInput
		require.NoError(t, json.Unmarshal(body, &input))
		assert.Equal(t, "user-1", input.UserID)

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(Classification{Label: LabelAdvanced, Confidence: 0.91})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 2*time.Second)

	result, err := client.Classify(context.Background(), ClassifyInput{
		UserID:       "user-1",
		AverageScore: 78.5,
	})

	require.NoError(t, err)
	assert.Equal(t, LabelAdvanced, result.Label)
	assert.InDelta(t, 0.91, result.Confidence, 0.001)
}

func TestHTTPClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 2*time.Second)

	_, err := client.Predict(context.Background(), PredictInput{UserID: "user-1"})
	require.Error(t, err)
}

func TestHTTPClient_Unreachable(t *testing.T) {
	// Closed server guarantees a connection error
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewHTTPClient(server.URL, 500*time.Millisecond)

	_, err := client.Recommend(context.Background(), RecommendInput{UserID: "user-1"})
	require.Error(t, err)
}

func TestFallback_PassesThroughOnSuccess(t *testing.T) {
	inner := &Static{
		Classification: Classification{Label: LabelExpert, Confidence: 0.99},
	}
	fallback := NewFallback(inner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := fallback.Classify(context.Background(), ClassifyInput{AverageScore: 90})

	require.NoError(t, err)
	assert.Equal(t, LabelExpert, result.Label)
	assert.InDelta(t, 0.99, result.Confidence, 0.001)
}

func TestFallback_Classify_Heuristic(t *testing.T) {
	inner := &Static{Err: errors.New("connection refused")}
	fallback := NewFallback(inner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name         string
		averageScore float64
		wantLabel    string
	}{
		{name: "beginner", averageScore: 25, wantLabel: LabelBeginner},
		{name: "beginner upper bound", averageScore: 50, wantLabel: LabelBeginner},
		{name: "intermediate low bound", averageScore: 55, wantLabel: LabelIntermediate},
		{name: "intermediate", averageScore: 60, wantLabel: LabelIntermediate},
		{name: "advanced low bound", averageScore: 70, wantLabel: LabelAdvanced},
		{name: "expert low bound", averageScore: 85, wantLabel: LabelExpert},
		{name: "expert", averageScore: 92, wantLabel: LabelExpert},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := fallback.Classify(context.Background(), ClassifyInput{AverageScore: testCase.averageScore})
			require.NoError(t, err)
			assert.Equal(t, testCase.wantLabel, result.Label)
			assert.InDelta(t, heuristicConfidence, result.Confidence, 0.001)
		})
	}
}

func TestFallback_Predict_JittersLastScore(t *testing.T) {
	inner := &Static{Err: errors.New("timeout")}
	fallback := NewFallback(inner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Newest first: the basis is 60, not the 70 mean of the history
	scores := []float64{60, 75, 75}

	// The jitter window is [-5, +5] around the most recent score
	for i := 0; i < 50; i++ {
		result, err := fallback.Predict(context.Background(), PredictInput{RecentScores: scores})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.PredictedScore, 55.0)
		assert.LessOrEqual(t, result.PredictedScore, 65.0)
	}
}

func TestFallback_Predict_ClampsToScoreBounds(t *testing.T) {
	inner := &Static{Err: errors.New("timeout")}
	fallback := NewFallback(inner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for i := 0; i < 50; i++ {
		result, err := fallback.Predict(context.Background(), PredictInput{RecentScores: []float64{99, 100, 100}})
		require.NoError(t, err)
		assert.LessOrEqual(t, result.PredictedScore, 100.0)
	}
}

func TestFallback_Recommend_WeakestDomain(t *testing.T) {
	inner := &Static{Err: errors.New("unavailable")}
	fallback := NewFallback(inner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := fallback.Recommend(context.Background(), RecommendInput{
		AverageScore: 60,
		DomainAverages: map[string]float64{
			"working_memory":   70,
			"attention":        45,
			"processing_speed": 80,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "attention", result.FocusDomain)
	assert.Equal(t, "medium", result.Difficulty)
}

func TestRecommendLocally_DifficultyTiers(t *testing.T) {
	tests := []struct {
		name           string
		averageScore   float64
		wantDifficulty string
	}{
		{name: "novice gets easy", averageScore: 30, wantDifficulty: "easy"},
		{name: "mid gets medium", averageScore: 50, wantDifficulty: "medium"},
		{name: "strong gets hard", averageScore: 80, wantDifficulty: "hard"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			result := RecommendLocally(RecommendInput{
				AverageScore:   testCase.averageScore,
				DomainAverages: map[string]float64{"attention": 50},
			})
			assert.Equal(t, testCase.wantDifficulty, result.Difficulty)
		})
	}
}

func TestWeakestDomain_TieBreaksAlphabetically(t *testing.T) {
	result := weakestDomain(map[string]float64{
		"processing_speed": 50,
		"attention":        50,
	})
	assert.Equal(t, "attention", result)
}

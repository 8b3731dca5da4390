// Copyright (c) 2026 MindMeld. All rights reserved.

package ml

import "context"

// Static is a [Client] returning canned responses. Intended for tests and
// local development without an inference deployment.
type Static struct {
	Classification Classification
	Reco           Recommendation
	Pred           Prediction

	// Err, when set, is returned by every call instead of the canned data.
	Err error
}

// Classify returns the canned classification.
func (static *Static) Classify(context.Context, ClassifyInput) (*Classification, error) {
	if static.Err != nil {
		return nil, static.Err
	}
	result := static.Classification
	return &result, nil
}

// Recommend returns the canned recommendation.
func (static *Static) Recommend(context.Context, RecommendInput) (*Recommendation, error) {
	if static.Err != nil {
		return nil, static.Err
	}
	result := static.Reco
	return &result, nil
}

// Predict returns the canned prediction.
func (static *Static) Predict(context.Context, PredictInput) (*Prediction, error) {
	if static.Err != nil {
		return nil, static.Err
	}
	result := static.Pred
	return &result, nil
}

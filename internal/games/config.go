// Copyright (c) 2026 MindMeld. All rights reserved.

package games

// Config is a difficulty-scaled parameter set handed to the game client.
//
// Parameters are game-specific; TimeLimitSeconds is common to all games and
// also serves as a sanity bound for reported session durations.
type Config struct {
	GameID           string         `json:"game_id"`
	Difficulty       Difficulty     `json:"difficulty"`
	TimeLimitSeconds int            `json:"time_limit_seconds"`
	Parameters       map[string]any `json:"parameters"`
}

// GenerateConfig produces the parameter set for a game at a difficulty.
// The bool result is false when the game ID is unknown to the catalog.
func (catalog *Catalog) GenerateConfig(gameID string, difficulty Difficulty) (Config, bool) {
	if !catalog.Exists(gameID) {
		return Config{}, false
	}

	config := Config{
		GameID:     gameID,
		Difficulty: difficulty,
	}

	switch gameID {
	case IDNBack:
		config.TimeLimitSeconds = 120
		config.Parameters = map[string]any{
			"n_level":              scaleInt(difficulty, 1, 2, 3),
			"trials":               scaleInt(difficulty, 20, 30, 40),
			"stimulus_duration_ms": scaleInt(difficulty, 2500, 2000, 1500),
		}

	case IDMemoryMatrix:
		config.TimeLimitSeconds = 90
		config.Parameters = map[string]any{
			"grid_size":       scaleInt(difficulty, 3, 4, 5),
			"tiles_to_recall": scaleInt(difficulty, 3, 5, 7),
			"display_time_ms": scaleInt(difficulty, 2000, 1500, 1000),
		}

	case IDFlanker:
		config.TimeLimitSeconds = 60
		config.Parameters = map[string]any{
			"trials":               scaleInt(difficulty, 20, 30, 40),
			"stimulus_duration_ms": scaleInt(difficulty, 1500, 1200, 900),
			"congruent_ratio":      scaleFloat(difficulty, 0.7, 0.5, 0.3),
		}

	case IDStroopSprint:
		config.TimeLimitSeconds = 60
		config.Parameters = map[string]any{
			"trials":      scaleInt(difficulty, 20, 30, 40),
			"color_count": scaleInt(difficulty, 3, 4, 6),
		}

	case IDReactionTime:
		config.TimeLimitSeconds = 60
		config.Parameters = map[string]any{
			"rounds":       scaleInt(difficulty, 5, 7, 10),
			"min_delay_ms": 1000,
			"max_delay_ms": scaleInt(difficulty, 4000, 3000, 2000),
		}

	case IDSpeedMatch:
		config.TimeLimitSeconds = 60
		config.Parameters = map[string]any{
			"trials":       scaleInt(difficulty, 25, 35, 50),
			"symbol_count": scaleInt(difficulty, 4, 6, 8),
		}

	case IDTowerOfHanoi:
		disks := scaleInt(difficulty, 3, 4, 5)
		config.TimeLimitSeconds = scaleInt(difficulty, 180, 300, 480)
		config.Parameters = map[string]any{
			"disks": disks,
			// Minimum moves for n disks is 2^n - 1
			"optimal_moves": (1 << disks) - 1,
		}

	case IDPatternLogic:
		config.TimeLimitSeconds = scaleInt(difficulty, 180, 240, 300)
		config.Parameters = map[string]any{
			"puzzles":            scaleInt(difficulty, 8, 10, 12),
			"options_per_puzzle": scaleInt(difficulty, 4, 5, 6),
		}
	}

	return config, true
}

// scaleInt picks the integer value matching the difficulty tier.
func scaleInt(difficulty Difficulty, easy, medium, hard int) int {
	switch difficulty {
	case DifficultyHard:
		return hard
	case DifficultyMedium:
		return medium
	default:
		return easy
	}
}

// scaleFloat picks the float value matching the difficulty tier.
func scaleFloat(difficulty Difficulty, easy, medium, hard float64) float64 {
	switch difficulty {
	case DifficultyHard:
		return hard
	case DifficultyMedium:
		return medium
	default:
		return easy
	}
}

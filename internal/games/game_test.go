// Copyright (c) 2026 MindMeld. All rights reserved.

package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Shape(t *testing.T) {
	all := Default().All()
	require.Len(t, all, 8)

	// Exactly two games per domain
	perDomain := map[Domain]int{}
	seen := map[string]bool{}
	for _, game := range all {
		perDomain[game.Domain]++
		assert.False(t, seen[game.ID], "duplicate game ID %q", game.ID)
		seen[game.ID] = true
		assert.NotEmpty(t, game.Name)
		assert.NotEmpty(t, game.Description)
	}

	for _, domain := range Domains() {
		assert.Equal(t, 2, perDomain[domain], "domain %s", domain)
	}
}

func TestCatalog_SlugIDs(t *testing.T) {
	// IDs must be URL-safe slugs derived from the display names
	assert.Equal(t, "n-back", IDNBack)
	assert.Equal(t, "memory-matrix", IDMemoryMatrix)
	assert.Equal(t, "tower-of-hanoi", IDTowerOfHanoi)
	assert.Equal(t, "stroop-sprint", IDStroopSprint)
}

func TestCatalog_ByDomain(t *testing.T) {
	attention := Default().ByDomain(DomainAttention)
	require.Len(t, attention, 2)
	for _, game := range attention {
		assert.Equal(t, DomainAttention, game.Domain)
	}
}

func TestCatalog_ByID(t *testing.T) {
	catalog := Default()

	game, ok := catalog.ByID(IDReactionTime)
	require.True(t, ok)
	assert.Equal(t, "Reaction Time", game.Name)
	assert.Equal(t, DomainProcessingSpeed, game.Domain)

	_, ok = catalog.ByID("chess")
	assert.False(t, ok)
}

func TestNewCatalog_FixtureContent(t *testing.T) {
	fixture := NewCatalog([]Game{
		{ID: "mirror-maze", Name: "Mirror Maze", Domain: DomainAttention},
	})

	assert.True(t, fixture.Exists("mirror-maze"))
	assert.False(t, fixture.Exists(IDNBack), "fixture catalogs carry only their own content")
	assert.Len(t, fixture.All(), 1)
}

func TestNewCatalog_CopiesInput(t *testing.T) {
	source := []Game{{ID: "a", Name: "A", Domain: DomainAttention}}
	catalog := NewCatalog(source)

	source[0].ID = "mutated"

	_, ok := catalog.ByID("a")
	assert.True(t, ok, "catalog must not alias the caller's slice")
}

func TestValidDomain(t *testing.T) {
	assert.True(t, ValidDomain("working_memory"))
	assert.True(t, ValidDomain("problem_solving"))
	assert.False(t, ValidDomain("memory"))
	assert.False(t, ValidDomain(""))
}

func TestGenerateConfig_DifficultyScaling(t *testing.T) {
	tests := []struct {
		name       string
		gameID     string
		difficulty Difficulty
		parameter  string
		want       any
	}{
		{name: "n-back easy level", gameID: IDNBack, difficulty: DifficultyEasy, parameter: "n_level", want: 1},
		{name: "n-back hard level", gameID: IDNBack, difficulty: DifficultyHard, parameter: "n_level", want: 3},
		{name: "matrix medium grid", gameID: IDMemoryMatrix, difficulty: DifficultyMedium, parameter: "grid_size", want: 4},
		{name: "hanoi easy optimal moves", gameID: IDTowerOfHanoi, difficulty: DifficultyEasy, parameter: "optimal_moves", want: 7},
		{name: "hanoi hard optimal moves", gameID: IDTowerOfHanoi, difficulty: DifficultyHard, parameter: "optimal_moves", want: 31},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			config, ok := Default().GenerateConfig(testCase.gameID, testCase.difficulty)
			require.True(t, ok)
			assert.Equal(t, testCase.want, config.Parameters[testCase.parameter])
			assert.Equal(t, testCase.difficulty, config.Difficulty)
			assert.Positive(t, config.TimeLimitSeconds)
		})
	}
}

func TestGenerateConfig_UnknownGame(t *testing.T) {
	_, ok := Default().GenerateConfig("chess", DifficultyEasy)
	assert.False(t, ok)
}

func TestGenerateConfig_AllGamesHaveParameters(t *testing.T) {
	catalog := Default()
	for _, game := range catalog.All() {
		for _, difficulty := range Difficulties() {
			config, ok := catalog.GenerateConfig(game.ID, difficulty)
			require.True(t, ok, "game %s", game.ID)
			assert.NotEmpty(t, config.Parameters, "game %s at %s", game.ID, difficulty)
		}
	}
}

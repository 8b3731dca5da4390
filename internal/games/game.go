// Copyright (c) 2026 MindMeld. All rights reserved.

/*
Package games defines the cognitive training game catalog.

The catalog is immutable and compiled into the binary: games are product
content, not user data, so there is no storage layer here. Each game belongs
to exactly one cognitive domain and scales across three difficulty levels.

# Architecture

The production [Catalog] is constructed once in the composition root and
injected into every consumer; other modules reference games only by ID. The
session recorder validates incoming session payloads against the injected
catalog, and the analytics module groups results by the domain declared here.
*/
package games

import (
	"github.com/mindmeld/server/pkg/slug"
)

// # Cognitive Domains

// Domain identifies the cognitive capacity a game trains.
type Domain string

const (
	DomainWorkingMemory   Domain = "working_memory"
	DomainAttention       Domain = "attention"
	DomainProcessingSpeed Domain = "processing_speed"
	DomainProblemSolving  Domain = "problem_solving"
)

// Domains returns all cognitive domains in display order.
func Domains() []Domain {
	return []Domain{
		DomainWorkingMemory,
		DomainAttention,
		DomainProcessingSpeed,
		DomainProblemSolving,
	}
}

// ValidDomain reports whether the given string names a known domain.
func ValidDomain(candidate string) bool {
	for _, domain := range Domains() {
		if string(domain) == candidate {
			return true
		}
	}
	return false
}

// # Difficulty Levels

// Difficulty identifies a game's challenge tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties returns all difficulty levels from easiest to hardest.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ValidDifficulty reports whether the given string names a known difficulty.
func ValidDifficulty(candidate string) bool {
	for _, difficulty := range Difficulties() {
		if string(difficulty) == candidate {
			return true
		}
	}
	return false
}

// # Game Entity

// Game describes a single entry in the training catalog.
type Game struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Domain      Domain `json:"domain"`
}

// Game IDs are slugs derived from the display names, so they stay stable
// and URL-safe. Declared as vars to make the derivation explicit.
var (
	IDNBack        = slug.From("N-Back")
	IDMemoryMatrix = slug.From("Memory Matrix")
	IDFlanker      = slug.From("Flanker")
	IDStroopSprint = slug.From("Stroop Sprint")
	IDReactionTime = slug.From("Reaction Time")
	IDSpeedMatch   = slug.From("Speed Match")
	IDTowerOfHanoi = slug.From("Tower of Hanoi")
	IDPatternLogic = slug.From("Pattern Logic")
)

// defaultGames is the production game content.
var defaultGames = []Game{
	{
		ID:          IDNBack,
		Name:        "N-Back",
		Description: "Recall whether the current stimulus matches the one shown N steps earlier.",
		Domain:      DomainWorkingMemory,
	},
	{
		ID:          IDMemoryMatrix,
		Name:        "Memory Matrix",
		Description: "Memorize and reproduce a pattern of highlighted tiles on a grid.",
		Domain:      DomainWorkingMemory,
	},
	{
		ID:          IDFlanker,
		Name:        "Flanker",
		Description: "Respond to a central arrow while ignoring distracting flanking arrows.",
		Domain:      DomainAttention,
	},
	{
		ID:          IDStroopSprint,
		Name:        "Stroop Sprint",
		Description: "Name the ink color of color words as fast as possible.",
		Domain:      DomainAttention,
	},
	{
		ID:          IDReactionTime,
		Name:        "Reaction Time",
		Description: "Tap the moment the signal appears. Pure speed, no tricks.",
		Domain:      DomainProcessingSpeed,
	},
	{
		ID:          IDSpeedMatch,
		Name:        "Speed Match",
		Description: "Decide whether each card matches the previous one, against the clock.",
		Domain:      DomainProcessingSpeed,
	},
	{
		ID:          IDTowerOfHanoi,
		Name:        "Tower of Hanoi",
		Description: "Move the full stack of disks across pegs in as few moves as possible.",
		Domain:      DomainProblemSolving,
	},
	{
		ID:          IDPatternLogic,
		Name:        "Pattern Logic",
		Description: "Identify the rule behind a visual sequence and pick what comes next.",
		Domain:      DomainProblemSolving,
	},
}

// # Catalog

// Catalog is an immutable set of games. It is constructed once during
// composition and injected into every consumer, so tests can substitute
// fixture content without touching package state.
type Catalog struct {
	games []Game
}

// NewCatalog builds a catalog from the given games. The slice is copied.
func NewCatalog(games []Game) *Catalog {
	copied := make([]Game, len(games))
	copy(copied, games)
	return &Catalog{games: copied}
}

// Default returns a catalog holding the production game content.
func Default() *Catalog {
	return NewCatalog(defaultGames)
}

// All returns every game in display order.
// The returned slice is a copy and safe to mutate.
func (catalog *Catalog) All() []Game {
	games := make([]Game, len(catalog.games))
	copy(games, catalog.games)
	return games
}

// ByDomain returns the games that train the given domain.
func (catalog *Catalog) ByDomain(domain Domain) []Game {
	var games []Game
	for _, game := range catalog.games {
		if game.Domain == domain {
			games = append(games, game)
		}
	}
	return games
}

// ByID resolves a game ID to its catalog entry.
func (catalog *Catalog) ByID(id string) (Game, bool) {
	for _, game := range catalog.games {
		if game.ID == id {
			return game, true
		}
	}
	return Game{}, false
}

// Exists reports whether a game ID is present in the catalog.
func (catalog *Catalog) Exists(id string) bool {
	_, ok := catalog.ByID(id)
	return ok
}

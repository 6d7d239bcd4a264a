// Package scoring computes per-game points, cumulative standings, match point
// and winner status for a tournament. Every function is pure: inputs are never
// mutated and no I/O is performed.
package scoring

import (
	"errors"
	"fmt"

	"github.com/openmohaa/overlay-engine/internal/models"
)

var (
	// ErrInvalidArgument is the domain error class for out-of-domain input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidPlacement is returned for placements <= 0.
	ErrInvalidPlacement = fmt.Errorf("%w: placement must be >= 1", ErrInvalidArgument)
)

// DefaultPlacementTable awards points for placements 1..15.
var DefaultPlacementTable = []int{12, 9, 7, 5, 4, 3, 3, 2, 2, 2, 1, 1, 1, 1, 1}

// Points is the breakdown of one team's score for one game.
type Points struct {
	Total     int `json:"total"`
	Kills     int `json:"kills"`
	Placement int `json:"placement"`
	Other     int `json:"other"`
}

// CalcPoints scores a single game for a single team.
func CalcPoints(gameIndex, placement, kills int, m models.CalcMethod) (Points, error) {
	if placement <= 0 {
		return Points{}, fmt.Errorf("game %d: %w (got %d)", gameIndex, ErrInvalidPlacement, placement)
	}

	gc := m.Game(gameIndex)

	killAmp := models.DefaultKillAmp
	if gc.KillAmp != nil {
		killAmp = *gc.KillAmp
	}
	killCap := models.DefaultKillCap
	if gc.KillCap != nil {
		killCap = *gc.KillCap
	}

	var p Points
	p.Kills = kills * killAmp
	if p.Kills > killCap {
		p.Kills = killCap
	}

	table := DefaultPlacementTable
	if gc.CustomTable != nil {
		table = gc.CustomTable
	}
	if placement-1 < len(table) {
		p.Placement = table[placement-1]
	}

	p.Other = 0
	p.Total = p.Kills + p.Placement + p.Other
	return p, nil
}

// AdvancePoints returns the carry-in points of a team, 0 when none are configured.
func AdvancePoints(teamID int, m models.CalcMethod) int {
	if teamID < 0 || teamID >= len(m.AdvancePoints) {
		return 0
	}
	return m.AdvancePoints[teamID]
}

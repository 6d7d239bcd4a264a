package scoring

import (
	"errors"
	"testing"

	"github.com/openmohaa/overlay-engine/internal/models"
)

func intp(v int) *int { return &v }

func TestCalcPoints_InvalidPlacement(t *testing.T) {
	for _, placement := range []int{0, -1, -255} {
		_, err := CalcPoints(0, placement, 3, models.CalcMethod{})
		if err == nil {
			t.Fatalf("CalcPoints(placement=%d) error = nil, want error", placement)
		}
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("CalcPoints(placement=%d) error = %v, want ErrInvalidArgument", placement, err)
		}
		if !errors.Is(err, ErrInvalidPlacement) {
			t.Errorf("CalcPoints(placement=%d) error = %v, want ErrInvalidPlacement", placement, err)
		}
	}
}

func TestCalcPoints(t *testing.T) {
	amp2cap9 := models.CalcMethod{Games: map[int]models.GameCalc{
		0: {KillAmp: intp(2), KillCap: intp(9)},
	}}
	custom := models.CalcMethod{Games: map[int]models.GameCalc{
		1: {CustomTable: []int{10, 5}},
	}}

	tests := []struct {
		name      string
		game      int
		placement int
		kills     int
		method    models.CalcMethod
		want      Points
	}{
		{"defaults", 0, 1, 5, models.CalcMethod{}, Points{Total: 17, Kills: 5, Placement: 12}},
		{"amp and cap", 0, 1, 10, amp2cap9, Points{Total: 21, Kills: 9, Placement: 12}},
		{"override only for its game", 1, 1, 10, amp2cap9, Points{Total: 22, Kills: 10, Placement: 12}},
		{"last default entry", 0, 15, 0, models.CalcMethod{}, Points{Total: 1, Placement: 1}},
		{"beyond default table", 0, 16, 2, models.CalcMethod{}, Points{Total: 2, Kills: 2}},
		{"sentinel placement", 0, models.SentinelUnranked, 4, models.CalcMethod{}, Points{Total: 4, Kills: 4}},
		{"custom table", 1, 2, 0, custom, Points{Total: 5, Placement: 5}},
		{"beyond custom table", 1, 3, 1, custom, Points{Total: 1, Kills: 1}},
		{"default cap", 0, 1, 300, models.CalcMethod{}, Points{Total: 255 + 12, Kills: 255, Placement: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalcPoints(tt.game, tt.placement, tt.kills, tt.method)
			if err != nil {
				t.Fatalf("CalcPoints() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CalcPoints() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCalcPoints_TotalIsSumAndCapped(t *testing.T) {
	m := models.CalcMethod{Games: map[int]models.GameCalc{
		0: {KillAmp: intp(3), KillCap: intp(12)},
	}}
	for placement := 1; placement <= 20; placement++ {
		for kills := 0; kills <= 30; kills++ {
			p, err := CalcPoints(0, placement, kills, m)
			if err != nil {
				t.Fatalf("CalcPoints(%d, %d) error = %v", placement, kills, err)
			}
			if p.Total != p.Kills+p.Placement+p.Other {
				t.Fatalf("CalcPoints(%d, %d).Total = %d, want %d", placement, kills, p.Total, p.Kills+p.Placement)
			}
			if p.Kills > 12 {
				t.Fatalf("CalcPoints(%d, %d).Kills = %d exceeds cap 12", placement, kills, p.Kills)
			}
			if p.Other != 0 {
				t.Fatalf("CalcPoints().Other = %d, want 0", p.Other)
			}
		}
	}
}

func TestAdvancePoints(t *testing.T) {
	m := models.CalcMethod{AdvancePoints: []int{5, 0, 3}}
	tests := []struct {
		team int
		want int
	}{
		{0, 5}, {1, 0}, {2, 3}, {3, 0}, {-1, 0},
	}
	for _, tt := range tests {
		if got := AdvancePoints(tt.team, m); got != tt.want {
			t.Errorf("AdvancePoints(%d) = %d, want %d", tt.team, got, tt.want)
		}
	}
	if got := AdvancePoints(0, models.CalcMethod{}); got != 0 {
		t.Errorf("AdvancePoints() without config = %d, want 0", got)
	}
}

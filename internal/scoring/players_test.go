package scoring

import (
	"reflect"
	"testing"

	"github.com/openmohaa/overlay-engine/internal/models"
)

func TestMode(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"empty", nil, ""},
		{"single", []string{"a"}, "a"},
		{"clear winner", []string{"a", "b", "b"}, "b"},
		{"tie goes to first to reach max", []string{"a", "b", "b", "a"}, "b"},
		{"tie at one", []string{"x", "y", "z"}, "x"},
		{"later value overtakes", []string{"a", "a", "b", "b", "b"}, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mode(tt.values); got != tt.want {
				t.Errorf("Mode(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}

	if got := Mode([]int{3, 1, 1, 3}); got != 1 {
		t.Errorf("Mode(ints) = %d, want 1", got)
	}
}

func TestTotalPlayers(t *testing.T) {
	results := []models.Result{
		result(models.ResultTeam{ID: 0, Name: "Alpha", Placement: 1, Players: []models.ResultPlayer{
			{Hash: "p1", Name: "Ash", Character: "wraith", Kills: 3, DamageDealt: 400, DamageTaken: 100},
		}}),
		result(models.ResultTeam{ID: 0, Name: "Alpha", Placement: 2, Players: []models.ResultPlayer{
			{Hash: "p1", Name: "Ash2", Character: "bloodhound", Kills: 1, DamageDealt: 150},
		}}),
		result(models.ResultTeam{ID: 1, Name: "Beta", Placement: 1, Players: []models.ResultPlayer{
			{Hash: "p1", Name: "Ash2", Character: "wraith", Kills: 2, Assists: 1, DamageDealt: 250, DamageTaken: 50},
		}}),
	}

	totals := TotalPlayers(results)
	p1, ok := totals["p1"]
	if !ok {
		t.Fatal("player p1 missing")
	}
	want := PlayerTotal{
		Hash: "p1", Name: "Ash2", TeamID: 0, TeamName: "Alpha", Character: "wraith",
		Games: 3, Kills: 6, Assists: 1, DamageDealt: 800, DamageTaken: 150,
	}
	if !reflect.DeepEqual(*p1, want) {
		t.Errorf("TotalPlayers()[p1] = %+v, want %+v", *p1, want)
	}
}

func TestTeamDamage(t *testing.T) {
	results := []models.Result{
		result(models.ResultTeam{ID: 0, Placement: 1, Players: []models.ResultPlayer{
			{Hash: "a", DamageDealt: 100, DamageTaken: 10},
			{Hash: "b", DamageDealt: 50, DamageTaken: 20},
		}}),
		result(models.ResultTeam{ID: 0, Placement: 1, Players: []models.ResultPlayer{
			{Hash: "a", DamageDealt: 5},
		}}),
	}
	dealt, taken := TeamDamage(results)
	if dealt[0] != 155 || taken[0] != 30 {
		t.Errorf("TeamDamage() = (%d, %d), want (155, 30)", dealt[0], taken[0])
	}
}

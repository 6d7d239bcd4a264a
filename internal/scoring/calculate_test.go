package scoring

import (
	"errors"
	"reflect"
	"testing"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// matchPointResults: with a threshold of 15, team 0 reaches 20 after game 2
// (index 1) and wins game 3 (index 2). Team 1 crosses the threshold in game 2
// by winning it, which must not count.
func matchPointResults() []models.Result {
	return []models.Result{
		result(models.ResultTeam{ID: 0, Placement: 1, Kills: 0}, models.ResultTeam{ID: 1, Placement: 2, Kills: 0}),
		result(models.ResultTeam{ID: 0, Placement: 3, Kills: 1}, models.ResultTeam{ID: 1, Placement: 1, Kills: 0}),
		result(models.ResultTeam{ID: 0, Placement: 1, Kills: 0}, models.ResultTeam{ID: 1, Placement: 2, Kills: 0}),
		result(models.ResultTeam{ID: 0, Placement: 2, Kills: 0}, models.ResultTeam{ID: 1, Placement: 1, Kills: 0}),
	}
}

func TestCalculate_MatchPointWinner(t *testing.T) {
	m := models.CalcMethod{MatchPoints: 15}
	results := matchPointResults()

	trs, err := Calculate(results, nil, m)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	if got := trs[0].CumulativePoints; !reflect.DeepEqual(got, []int{12, 20, 32, 41}) {
		t.Errorf("team 0 cumulative = %v, want [12 20 32 41]", got)
	}
	if !trs[0].MatchPoints || !trs[1].MatchPoints {
		t.Errorf("matchpoints = (%v, %v), want both true", trs[0].MatchPoints, trs[1].MatchPoints)
	}
	if !trs[0].Winner {
		t.Error("team 0 winner = false, want true")
	}
	if trs[1].Winner {
		t.Error("team 1 winner = true, want false")
	}
	if trs[0].Rank != 0 {
		t.Errorf("winner rank = %d, want 0", trs[0].Rank)
	}
}

func TestCalculate_CrossingGameDoesNotWin(t *testing.T) {
	m := models.CalcMethod{MatchPoints: 21}
	results := []models.Result{
		result(models.ResultTeam{ID: 0, Placement: 1}, models.ResultTeam{ID: 1, Placement: 2}),
		result(models.ResultTeam{ID: 0, Placement: 1}, models.ResultTeam{ID: 1, Placement: 2}),
	}

	trs, err := Calculate(results, nil, m)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !trs[0].MatchPoints {
		t.Error("team 0 matchpoints = false, want true after reaching 24")
	}
	if trs[0].Winner {
		t.Error("team 0 winner = true, want false: it crossed the threshold in the game it won")
	}
}

func TestCalculate_MatchPointAfterFirstGame(t *testing.T) {
	m := models.CalcMethod{MatchPoints: 12}
	trs, err := Calculate([]models.Result{
		result(models.ResultTeam{ID: 0, Placement: 1}),
	}, nil, m)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !trs[0].MatchPoints {
		t.Error("matchpoints = false, want true")
	}
}

func TestCalculate_NoThreshold(t *testing.T) {
	trs, err := Calculate(matchPointResults(), nil, models.CalcMethod{})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	for id, tr := range trs {
		if tr.MatchPoints || tr.Winner {
			t.Errorf("team %d = (matchpoints %v, winner %v), want neither", id, tr.MatchPoints, tr.Winner)
		}
	}
}

func TestCalculate_AdvancePoints(t *testing.T) {
	m := models.CalcMethod{AdvancePoints: []int{5}}
	trs, err := Calculate([]models.Result{
		result(models.ResultTeam{ID: 0, Placement: 1, Kills: 2}, models.ResultTeam{ID: 1, Placement: 2}),
		result(models.ResultTeam{ID: 0, Placement: 2}, models.ResultTeam{ID: 1, Placement: 1}),
	}, nil, m)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if got := trs[0].CumulativePoints; !reflect.DeepEqual(got, []int{19, 28}) {
		t.Errorf("team 0 cumulative = %v, want [19 28]", got)
	}
	if trs[0].TotalPoints != 28 {
		t.Errorf("team 0 total = %d, want 28", trs[0].TotalPoints)
	}
	if trs[1].TotalPoints != 21 {
		t.Errorf("team 1 total = %d, want 21", trs[1].TotalPoints)
	}
}

func TestCalculate_LiveGameExcludedFromMatchPoint(t *testing.T) {
	m := models.CalcMethod{MatchPoints: 14}
	results := []models.Result{result(models.ResultTeam{ID: 0, Placement: 1})}
	live := &models.Game{Teams: []models.Team{
		{ID: 0, Kills: 3, Players: []models.Player{{Hash: "a", State: models.PlayerAlive}}},
	}}

	trs, err := Calculate(results, live, m)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	tr := trs[0]
	if tr.Games() != 2 {
		t.Fatalf("games = %d, want 2", tr.Games())
	}
	if tr.TotalPoints != 15 {
		t.Errorf("total = %d, want 15", tr.TotalPoints)
	}
	if tr.MatchPoints {
		t.Error("matchpoints = true, want false: only the live game reaches the threshold")
	}
}

func TestCalculate_InvalidPlacement(t *testing.T) {
	_, err := Calculate([]models.Result{result(models.ResultTeam{ID: 0, Placement: 0})}, nil, models.CalcMethod{})
	if !errors.Is(err, ErrInvalidPlacement) {
		t.Errorf("Calculate() error = %v, want ErrInvalidPlacement", err)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	results := matchPointResults()
	m := models.CalcMethod{MatchPoints: 15}
	first, err := Calculate(results, nil, m)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	second, err := Calculate(results, nil, m)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Calculate() is not deterministic over the same input")
	}
}

func TestSingleResult(t *testing.T) {
	r := result(
		models.ResultTeam{ID: 0, Placement: 3, Kills: 6},
		models.ResultTeam{ID: 1, Placement: 1, Kills: 0},
		models.ResultTeam{ID: 2, Placement: 2, Kills: 1},
	)
	trs, err := SingleResult(r, 0, models.CalcMethod{})
	if err != nil {
		t.Fatalf("SingleResult() error = %v", err)
	}

	wantTotals := map[int]int{0: 13, 1: 12, 2: 10}
	wantRanks := map[int]int{0: 0, 1: 1, 2: 2}
	for id, tr := range trs {
		if tr.TotalPoints != wantTotals[id] {
			t.Errorf("team %d total = %d, want %d", id, tr.TotalPoints, wantTotals[id])
		}
		if tr.Rank != wantRanks[id] {
			t.Errorf("team %d rank = %d, want %d", id, tr.Rank, wantRanks[id])
		}
	}
}

package scoring

import (
	"sort"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// RankTeamResults orders the teams and writes a 0-based Rank into each.
// The returned slice lists team ids from first to last.
//
// Order: the winner first, then higher total points, then the best per-game
// points, then the best placements, then the best kills (each compared on a
// sorted copy, element by element), then more games played. Remaining ties
// keep ascending team id order.
func RankTeamResults(trs models.TeamResults) []int {
	ids := trs.IDs()

	type sortKey struct {
		tr         *models.TeamResult
		points     []int
		placements []int
		kills      []int
	}
	keys := make(map[int]sortKey, len(ids))
	for _, id := range ids {
		tr := trs[id]
		keys[id] = sortKey{
			tr:         tr,
			points:     sortedDesc(tr.Points),
			placements: sortedAsc(tr.Placements),
			kills:      sortedDesc(tr.Kills),
		}
	}

	sort.SliceStable(ids, func(i, j int) bool {
		return compareTeams(keys[ids[i]].tr, keys[ids[j]].tr,
			keys[ids[i]].points, keys[ids[j]].points,
			keys[ids[i]].placements, keys[ids[j]].placements,
			keys[ids[i]].kills, keys[ids[j]].kills) < 0
	})

	for rank, id := range ids {
		trs[id].Rank = rank
	}
	return ids
}

// compareTeams returns <0 when a ranks before b, >0 when after, 0 on a full tie.
func compareTeams(a, b *models.TeamResult, ap, bp, apl, bpl, ak, bk []int) int {
	if a.Winner != b.Winner {
		if a.Winner {
			return -1
		}
		return 1
	}
	if a.TotalPoints != b.TotalPoints {
		if a.TotalPoints > b.TotalPoints {
			return -1
		}
		return 1
	}
	// higher points win
	if c := compareElementwise(ap, bp); c != 0 {
		return -c
	}
	// lower placements win
	if c := compareElementwise(apl, bpl); c != 0 {
		return c
	}
	// higher kills win
	if c := compareElementwise(ak, bk); c != 0 {
		return -c
	}
	if len(a.Points) != len(b.Points) {
		if len(a.Points) > len(b.Points) {
			return -1
		}
		return 1
	}
	return 0
}

// compareElementwise compares the common prefix, returning the sign of the first difference.
func compareElementwise(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

func sortedAsc(values []int) []int {
	out := append([]int(nil), values...)
	sort.Ints(out)
	return out
}

func sortedDesc(values []int) []int {
	out := append([]int(nil), values...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

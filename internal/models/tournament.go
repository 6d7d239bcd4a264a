package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Scoring defaults
const (
	DefaultKillAmp = 1
	DefaultKillCap = 0xff
	MinKillAmp     = 2
	MaxKillAmp     = 4
)

// GameCalc overrides the scoring of a single game. Nil fields use the defaults.
type GameCalc struct {
	KillAmp     *int  `json:"killamp,omitempty"`
	KillCap     *int  `json:"killcap,omitempty"`
	CustomTable []int `json:"customtable,omitempty"`
}

// CalcMethod holds the tournament scoring rules.
type CalcMethod struct {
	Games         map[int]GameCalc
	AdvancePoints []int
	MatchPoints   int
}

// Game returns the overrides for a game, or an empty GameCalc.
func (m CalcMethod) Game(index int) GameCalc {
	if m.Games == nil {
		return GameCalc{}
	}
	return m.Games[index]
}

type rawGameCalc struct {
	KillAmp     *FlexNumber  `json:"killamp"`
	KillCap     *FlexNumber  `json:"killcap"`
	CustomTable []FlexNumber `json:"customtable"`
}

// normalize turns decoded numbers into sanitized values:
// killamp is clamped to [2,4] with NaN at the floor, killcap is floored at 0,
// and NaN table entries score 0.
func (r rawGameCalc) normalize() GameCalc {
	var gc GameCalc
	if r.KillAmp != nil {
		v := clamp(r.KillAmp.Int(MinKillAmp), MinKillAmp, MaxKillAmp)
		gc.KillAmp = &v
	}
	if r.KillCap != nil {
		v := r.KillCap.Int(0)
		if v < 0 {
			v = 0
		}
		gc.KillCap = &v
	}
	if r.CustomTable != nil {
		gc.CustomTable = make([]int, len(r.CustomTable))
		for i, n := range r.CustomTable {
			gc.CustomTable[i] = n.Int(0)
		}
	}
	return gc
}

// Normalize applies the same clamping rules to values set programmatically.
func (gc GameCalc) Normalize() GameCalc {
	out := GameCalc{CustomTable: gc.CustomTable}
	if gc.KillAmp != nil {
		v := clamp(*gc.KillAmp, MinKillAmp, MaxKillAmp)
		out.KillAmp = &v
	}
	if gc.KillCap != nil {
		v := *gc.KillCap
		if v < 0 {
			v = 0
		}
		out.KillCap = &v
	}
	return out
}

// Normalize sanitizes every game override and the threshold.
func (m CalcMethod) Normalize() CalcMethod {
	out := CalcMethod{AdvancePoints: m.AdvancePoints, MatchPoints: m.MatchPoints}
	if out.MatchPoints < 0 {
		out.MatchPoints = 0
	}
	if len(m.Games) > 0 {
		out.Games = make(map[int]GameCalc, len(m.Games))
		for i, gc := range m.Games {
			out.Games[i] = gc.Normalize()
		}
	}
	return out
}

// UnmarshalJSON decodes the wire shape: numeric keys hold per-game overrides,
// next to the "advancepoints" and "matchpoints" entries.
func (m *CalcMethod) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("calcmethod: %w", err)
	}

	out := CalcMethod{}
	for key, val := range raw {
		switch key {
		case "advancepoints":
			var pts []FlexNumber
			if err := json.Unmarshal(val, &pts); err != nil {
				continue
			}
			out.AdvancePoints = make([]int, len(pts))
			for i, p := range pts {
				out.AdvancePoints[i] = p.Int(0)
			}
		case "matchpoints":
			var mp FlexNumber
			if err := json.Unmarshal(val, &mp); err != nil {
				continue
			}
			out.MatchPoints = mp.Int(0)
			if out.MatchPoints < 0 {
				out.MatchPoints = 0
			}
		default:
			index, err := strconv.Atoi(key)
			if err != nil || index < 0 {
				continue
			}
			var rg rawGameCalc
			if err := json.Unmarshal(val, &rg); err != nil {
				continue
			}
			if out.Games == nil {
				out.Games = make(map[int]GameCalc)
			}
			out.Games[index] = rg.normalize()
		}
	}
	*m = out
	return nil
}

// MarshalJSON writes the wire shape read by UnmarshalJSON.
func (m CalcMethod) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Games)+2)
	indexes := make([]int, 0, len(m.Games))
	for i := range m.Games {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		out[strconv.Itoa(i)] = m.Games[i]
	}
	if m.AdvancePoints != nil {
		out["advancepoints"] = m.AdvancePoints
	}
	if m.MatchPoints > 0 {
		out["matchpoints"] = m.MatchPoints
	}
	return json.Marshal(out)
}

// TournamentParams is the tournament-wide configuration stored remotely.
type TournamentParams struct {
	CalcMethod CalcMethod      `json:"calcmethod"`
	ForceHide  map[string]bool `json:"forcehide,omitempty"`
}

// Clone returns a deep copy.
func (p TournamentParams) Clone() TournamentParams {
	out := TournamentParams{
		CalcMethod: CalcMethod{
			AdvancePoints: append([]int(nil), p.CalcMethod.AdvancePoints...),
			MatchPoints:   p.CalcMethod.MatchPoints,
		},
	}
	if p.CalcMethod.Games != nil {
		out.CalcMethod.Games = make(map[int]GameCalc, len(p.CalcMethod.Games))
		for i, gc := range p.CalcMethod.Games {
			gc.CustomTable = append([]int(nil), gc.CustomTable...)
			out.CalcMethod.Games[i] = gc
		}
	}
	if p.ForceHide != nil {
		out.ForceHide = make(map[string]bool, len(p.ForceHide))
		for k, v := range p.ForceHide {
			out.ForceHide[k] = v
		}
	}
	return out
}

// TeamParams are the per-team overrides kept by the remote service.
type TeamParams struct {
	Name string `json:"name,omitempty"`
}

// PlayerParams are the per-player overrides kept by the remote service.
type PlayerParams struct {
	Name string `json:"name,omitempty"`
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

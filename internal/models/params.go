package models

import "time"

// Scope selects which presentation consumers a parameter update targets.
type Scope string

const (
	ScopeGlobal       Scope = "global"
	ScopeTeam         Scope = "team"
	ScopePlayer       Scope = "player"
	ScopeCameraTeam   Scope = "camera-team"
	ScopeCameraPlayer Scope = "camera-player"
)

// ParamUpdate is one outward notification: a named value changed within a scope.
type ParamUpdate struct {
	Scope   Scope  `json:"scope"`
	ScopeID string `json:"scope_id,omitempty"`
	Name    string `json:"name"`
	Value   any    `json:"value"`
}

// Key identifies the parameter regardless of its value.
func (u ParamUpdate) Key() string {
	return string(u.Scope) + "|" + u.ScopeID + "|" + u.Name
}

// AnnouncementKind names one of the transient announcement queues.
type AnnouncementKind string

const (
	AnnounceSquadEliminated AnnouncementKind = "squad-eliminated"
	AnnounceTeamRespawned   AnnouncementKind = "team-respawned"
)

// Announcement is pushed when the next queued item is ready to display.
type Announcement struct {
	ID      string           `json:"id"`
	Kind    AnnouncementKind `json:"kind"`
	Seq     int              `json:"seq"`
	Payload any              `json:"payload"`
	ReadyAt time.Time        `json:"ready_at"`
}

// SquadEliminated is the payload of a squad-elimination announcement.
type SquadEliminated struct {
	Placement int    `json:"placement"`
	TeamID    int    `json:"team_id"`
	TeamName  string `json:"team_name"`
}

// TeamRespawned is the payload of a team-respawn announcement.
type TeamRespawned struct {
	TeamID           int      `json:"team_id"`
	TeamName         string   `json:"team_name"`
	RespawnPlayer    string   `json:"respawn_player"`
	RespawnedPlayers []string `json:"respawned_players"`
}

// Visibility is the set of active view capabilities.
type Visibility struct {
	Live   bool `json:"view-live"`
	Map    bool `json:"view-map"`
	Camera bool `json:"view-camera"`
}

// Capability names accepted in overlay registrations.
const (
	CapabilityLive        = "view-live"
	CapabilityMap         = "view-map"
	CapabilityCamera      = "view-camera"
	CapabilityDefaultHide = "defaulthide"
)

// Has reports whether the named capability is active.
func (v Visibility) Has(capability string) bool {
	switch capability {
	case CapabilityLive:
		return v.Live
	case CapabilityMap:
		return v.Map
	case CapabilityCamera:
		return v.Camera
	}
	return false
}

// Camera is the current observer subject.
type Camera struct {
	TeamID     int    `json:"team_id"`
	PlayerHash string `json:"player_hash,omitempty"`
}

// Snapshot is a read-only copy of the canonical state.
type Snapshot struct {
	TournamentID     string           `json:"tournament_id"`
	TournamentName   string           `json:"tournament_name"`
	Connection       string           `json:"connection"`
	Bootstrapping    bool             `json:"bootstrapping"`
	ResultsOnly      bool             `json:"results_only"`
	Game             *Game            `json:"game,omitempty"`
	ResultsCount     int              `json:"results_count"`
	TeamResults      TeamResults      `json:"team_results"`
	Params           TournamentParams `json:"params"`
	Camera           Camera           `json:"camera"`
	BannerRecognized bool             `json:"banner_recognized"`
	MapRecognized    bool             `json:"map_recognized"`
	WinnerDetermined bool             `json:"winner_determined"`
	Visibility       Visibility       `json:"visibility"`
	QueueLengths     map[string]int   `json:"queue_lengths"`
}

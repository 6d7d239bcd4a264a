package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// Config
const (
	defaultAPIURL = "http://localhost:8080/api/v1/broadcast"
)

// script is the broadcast sequence played against a running engine. It walks
// an overlay through one game: banner, camera, eliminations, respawn, winner.
var script = []models.TestCommand{
	{Type: models.TestGameState, State: models.StatePlaying},
	{Type: models.TestTeamBanner, TeamID: 3, Name: "Seed Squad"},
	{Type: models.TestCamera, TeamID: 3},
	{Type: models.TestPlayerBanner, TeamID: 3, Name: "SeedPlayer"},
	{Type: models.TestTeamKills, TeamID: 3, Kills: 4},
	{Type: models.TestSquadEliminated, TeamID: 7, Placement: 12, Name: "Other Squad"},
	{Type: models.TestTeamRespawned, TeamID: 7, RespawnPlayer: "Medic", RespawnedPlayers: []string{"Alpha", "Bravo"}},
	{Type: models.TestGameCount, Count: 2},
	{Type: models.TestMapLeaderboard},
	{Type: models.TestWinnerDetermine, TeamID: 3},
	{Type: models.TestWinnerDetermineReset},
}

func main() {
	apiURL := flag.String("url", defaultAPIURL, "broadcast endpoint of the overlay engine")
	delay := flag.Duration("delay", 2*time.Second, "pause between broadcasts")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	for i, cmd := range script {
		if i > 0 {
			time.Sleep(*delay)
		}
		if err := send(client, *apiURL, cmd); err != nil {
			log.Fatalf("Broadcast %s failed: %v", cmd.Type, err)
		}
	}

	fmt.Println("Seeding complete.")
}

func send(client *http.Client, url string, cmd models.TestCommand) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("%-26s -> %s %s\n", cmd.Type, resp.Status, bytes.TrimSpace(body))

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// game/api/portal_handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ctfarena/arena-services/shared/api"
	"github.com/ctfarena/arena-services/shared/models"
)

const requestTimeout = 5 * time.Second

// PlayerLoginRequest is the portal login payload.
type PlayerLoginRequest struct {
	Whatsapp string `json:"whatsapp"`
}

// PlayerLoginResponse identifies the logged-in player to the portal.
type PlayerLoginResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Status string  `json:"status"`
}

// SubmitFlagRequest is a flag submission.
type SubmitFlagRequest struct {
	PlayerID string `json:"playerId"`
	FlagCode string `json:"flagCode"`
}

// SubmitFlagResponse reports the award of an accepted submission.
type SubmitFlagResponse struct {
	Message  string  `json:"message"`
	Awarded  float64 `json:"awarded"`
	NewScore float64 `json:"newScore"`
}

// GameStatusResponse is the portal's status poll payload.
type GameStatusResponse struct {
	Active        bool  `json:"active"`
	RemainingTime int64 `json:"remainingTime"`
}

// ChallengeResponse describes a challenge without its secret code.
type ChallengeResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Link        string  `json:"link,omitempty"`
	Points      float64 `json:"points"`
	SetNumber   int     `json:"setNumber"`
}

// VerifySessionRequest carries the short session key handed out at round start.
type VerifySessionRequest struct {
	SessionID string `json:"sessionId"`
}

// LeaderboardEntry is one row of a scoreboard.
type LeaderboardEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Score       float64  `json:"score"`
	SolvedFlags []string `json:"solvedFlags"`
	Status      string   `json:"status,omitempty"`
	GroupID     string   `json:"groupId,omitempty"`
}

// PlayerLogin handles POST /api/game/login.
func (h *APIHandlers) PlayerLogin(w http.ResponseWriter, r *http.Request) {
	var req PlayerLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.Whatsapp == "" {
		api.WriteBadRequest(w, "Whatsapp number is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	player, err := h.GameService.PlayerLogin(ctx, req.Whatsapp)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, PlayerLoginResponse{
		ID:     player.ID,
		Name:   player.Name,
		Score:  player.Score,
		Status: player.Status,
	})
}

// SubmitFlag handles POST /api/game/submit.
func (h *APIHandlers) SubmitFlag(w http.ResponseWriter, r *http.Request) {
	var req SubmitFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.PlayerID == "" || req.FlagCode == "" {
		api.WriteBadRequest(w, "playerId and flagCode are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.GameService.SubmitFlag(ctx, req.PlayerID, req.FlagCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, SubmitFlagResponse{
		Message:  "Flag captured!",
		Awarded:  result.Awarded,
		NewScore: result.NewScore,
	})
}

// GameStatus handles GET /api/game/status. The optional playerId query
// parameter folds the player's personal extra time into the countdown.
func (h *APIHandlers) GameStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	status, err := h.GameService.Status(ctx, r.URL.Query().Get("playerId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, GameStatusResponse{
		Active:        status.Active,
		RemainingTime: status.RemainingTime,
	})
}

// Challenges handles GET /api/game/challenges. Flag codes never leave the
// server.
func (h *APIHandlers) Challenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	flags, err := h.GameService.Challenges(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	challenges := make([]ChallengeResponse, 0, len(flags))
	for _, flag := range flags {
		challenges = append(challenges, ChallengeResponse{
			ID:          flag.ID,
			Title:       flag.Title,
			Description: flag.Description,
			Link:        flag.Link,
			Points:      flag.Points,
			SetNumber:   flag.SetNumber,
		})
	}
	api.WriteJSON(w, http.StatusOK, challenges)
}

// VerifySession handles POST /api/game/verify-session.
func (h *APIHandlers) VerifySession(w http.ResponseWriter, r *http.Request) {
	var req VerifySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.SessionID == "" {
		api.WriteBadRequest(w, "sessionId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.GameService.VerifySession(ctx, req.SessionID); err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{"valid": true})
}

// Leaderboard handles GET /api/game/leaderboard: the scoreboard of the
// active round's team, or the last ended round's team between rounds.
func (h *APIHandlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	players, err := h.GameService.Leaderboard(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, leaderboardEntries(players, false))
}

// OverallLeaderboard handles GET /api/game/leaderboard/overall (admin only).
func (h *APIHandlers) OverallLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	players, err := h.GameService.OverallLeaderboard(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, leaderboardEntries(players, true))
}

func leaderboardEntries(players []models.Player, includeAdminFields bool) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(players))
	for _, player := range players {
		entry := LeaderboardEntry{
			ID:          player.ID,
			Name:        player.Name,
			Score:       player.Score,
			SolvedFlags: player.SolvedFlags,
		}
		if includeAdminFields {
			entry.Status = player.Status
			entry.GroupID = player.GroupID
		}
		entries = append(entries, entry)
	}
	return entries
}

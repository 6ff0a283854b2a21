// game/api/admin_handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ctfarena/arena-services/shared/api"
)

// AdminLoginRequest is the console login payload.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLoginResponse carries the bearer token and the operator's identity.
type AdminLoginResponse struct {
	Token string         `json:"token"`
	User  AdminUserBrief `json:"user"`
}

// AdminUserBrief is the operator identity echoed back on login.
type AdminUserBrief struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

// CreatePlayerRequest registers a player from the console.
type CreatePlayerRequest struct {
	Name     string `json:"name"`
	Whatsapp string `json:"whatsapp"`
}

// StartRoundRequest starts a round for a team with one of the flag sets.
type StartRoundRequest struct {
	GroupID string `json:"groupId"`
	FlagSet int    `json:"flagSet"`
}

// AddTimeRequest credits time to a round, a group's round or a player.
type AddTimeRequest struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Minutes    int64  `json:"minutes"`
	Seconds    int64  `json:"seconds"`
}

// UpdateRoundTimeRequest overwrites the active round's clock, in seconds.
type UpdateRoundTimeRequest struct {
	RemainingTime int64 `json:"remainingTime"`
}

// UpdateGroupTimeRequest sets a group's scheduled start slot.
type UpdateGroupTimeRequest struct {
	StartTime time.Time `json:"startTime"`
}

// CreateFlagRequest registers a challenge flag.
type CreateFlagRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Link        string  `json:"link"`
	Code        string  `json:"code"`
	Points      float64 `json:"points"`
	SetNumber   int     `json:"setNumber"`
}

// AdminLogin handles POST /api/auth/login.
func (h *APIHandlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.Username == "" || req.Password == "" {
		api.WriteBadRequest(w, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	token, user, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, AdminLoginResponse{
		Token: token,
		User: AdminUserBrief{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
			Name:     user.Name,
		},
	})
}

// ListPlayers handles GET /api/players.
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	players, err := h.PlayerService.ListPlayers(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, players)
}

// CreatePlayer handles POST /api/players.
func (h *APIHandlers) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.Name == "" || req.Whatsapp == "" {
		api.WriteBadRequest(w, "name and whatsapp are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	player, err := h.PlayerService.CreatePlayer(ctx, req.Name, req.Whatsapp)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, player)
}

// DeletePlayer handles DELETE /api/players/{id}.
func (h *APIHandlers) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.PlayerService.DeletePlayer(ctx, id); err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Player deleted."})
}

// ListGroups handles GET /api/groups.
func (h *APIHandlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	groups, err := h.GroupService.ListGroups(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, groups)
}

// CreateGroup handles POST /api/groups.
func (h *APIHandlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	group, err := h.GroupService.CreateGroup(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, group)
}

// UpdateGroupTime handles PUT /api/groups/{id}.
func (h *APIHandlers) UpdateGroupTime(w http.ResponseWriter, r *http.Request) {
	var req UpdateGroupTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.StartTime.IsZero() {
		api.WriteBadRequest(w, "startTime is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.GroupService.UpdateStartTime(ctx, mux.Vars(r)["id"], req.StartTime); err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Start time updated."})
}

// RescheduleGroups handles PUT /api/groups/update-times/{groupId}: re-staggers
// every pending group from the given one onward.
func (h *APIHandlers) RescheduleGroups(w http.ResponseWriter, r *http.Request) {
	var req UpdateGroupTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.StartTime.IsZero() {
		api.WriteBadRequest(w, "startTime is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.GroupService.RescheduleFrom(ctx, mux.Vars(r)["groupId"], req.StartTime); err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Schedule updated."})
}

// AddPlayerToGroup handles POST /api/groups/{groupId}/players/{playerId}.
func (h *APIHandlers) AddPlayerToGroup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.GroupService.AddPlayerToGroup(ctx, vars["groupId"], vars["playerId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Player added to group."})
}

// RemovePlayerFromGroup handles DELETE /api/groups/{groupId}/players/{playerId}.
func (h *APIHandlers) RemovePlayerFromGroup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.GroupService.RemovePlayerFromGroup(ctx, vars["groupId"], vars["playerId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Player removed from group."})
}

// CurrentRound handles GET /api/rounds/current.
func (h *APIHandlers) CurrentRound(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	round, err := h.RoundService.CurrentRound(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if round == nil {
		api.WriteJSON(w, http.StatusOK, map[string]interface{}{"active": false})
		return
	}
	api.WriteJSON(w, http.StatusOK, round)
}

// StartRound handles POST /api/rounds/start.
func (h *APIHandlers) StartRound(w http.ResponseWriter, r *http.Request) {
	var req StartRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.GroupID == "" {
		api.WriteBadRequest(w, "groupId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	round, err := h.RoundService.StartRound(ctx, req.GroupID, req.FlagSet)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, round)
}

// EndRound handles POST /api/rounds/end. Ending when nothing is active is a
// soft no-op, not an error.
func (h *APIHandlers) EndRound(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	round, err := h.RoundService.EndRound(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if round == nil {
		api.WriteJSON(w, http.StatusOK, map[string]string{"message": "No active round."})
		return
	}
	api.WriteJSON(w, http.StatusOK, round)
}

// AddTime handles POST /api/rounds/add-time.
func (h *APIHandlers) AddTime(w http.ResponseWriter, r *http.Request) {
	var req AddTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.Minutes == 0 && req.Seconds == 0 {
		api.WriteBadRequest(w, "minutes or seconds must be non-zero")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.RoundService.AddTime(ctx, req.TargetType, req.TargetID, req.Minutes, req.Seconds); err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Time added."})
}

// UpdateRoundTime handles PUT /api/rounds/update-time.
func (h *APIHandlers) UpdateRoundTime(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoundTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.RemainingTime < 0 {
		api.WriteBadRequest(w, "remainingTime must not be negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.RoundService.SetRemainingTime(ctx, req.RemainingTime); err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Remaining time updated."})
}

// ListFlags handles GET /api/flags. Codes are visible here; only admins with
// flag management capability reach this route.
func (h *APIHandlers) ListFlags(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	flags, err := h.FlagService.ListFlags(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, flags)
}

// CreateFlag handles POST /api/flags.
func (h *APIHandlers) CreateFlag(w http.ResponseWriter, r *http.Request) {
	var req CreateFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request payload")
		return
	}
	if req.Title == "" || req.Code == "" {
		api.WriteBadRequest(w, "title and code are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	flag, err := h.FlagService.CreateFlag(ctx, req.Title, req.Description, req.Link, req.Code, req.Points, req.SetNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, flag)
}

// DeleteFlag handles DELETE /api/flags/{id}.
func (h *APIHandlers) DeleteFlag(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.FlagService.DeleteFlag(ctx, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Flag deleted."})
}

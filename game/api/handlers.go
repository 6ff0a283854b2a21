// game/api/handlers.go
package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ctfarena/arena-services/game/scoring"
	"github.com/ctfarena/arena-services/game/service"
	"github.com/ctfarena/arena-services/shared/api"
	"github.com/ctfarena/arena-services/shared/auth"
)

// APIHandlers holds references to the services that handle business logic.
type APIHandlers struct {
	AuthService   *service.AuthService
	PlayerService *service.PlayerService
	GroupService  *service.GroupService
	FlagService   *service.FlagService
	RoundService  *service.RoundService
	GameService   *service.GameService
	Authenticator *auth.Authenticator
}

// NewAPIHandlers is the constructor for the API handlers.
func NewAPIHandlers(
	authService *service.AuthService,
	playerService *service.PlayerService,
	groupService *service.GroupService,
	flagService *service.FlagService,
	roundService *service.RoundService,
	gameService *service.GameService,
	authenticator *auth.Authenticator,
) *APIHandlers {
	return &APIHandlers{
		AuthService:   authService,
		PlayerService: playerService,
		GroupService:  groupService,
		FlagService:   flagService,
		RoundService:  roundService,
		GameService:   gameService,
		Authenticator: authenticator,
	}
}

// RegisterRoutes wires every endpoint. The player portal under /api/game is
// unauthenticated; everything else carries a bearer token and is gated by
// the role capability table at this boundary only.
func (h *APIHandlers) RegisterRoutes(r *mux.Router) {
	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/auth/login", h.AdminLogin).
		Methods(http.MethodPost, http.MethodOptions)

	// Player portal (unauthenticated).
	game := apiRouter.PathPrefix("/game").Subrouter()
	game.HandleFunc("/login", h.PlayerLogin).Methods(http.MethodPost, http.MethodOptions)
	game.HandleFunc("/submit", h.SubmitFlag).Methods(http.MethodPost, http.MethodOptions)
	game.HandleFunc("/status", h.GameStatus).Methods(http.MethodGet, http.MethodOptions)
	game.HandleFunc("/challenges", h.Challenges).Methods(http.MethodGet, http.MethodOptions)
	game.HandleFunc("/verify-session", h.VerifySession).Methods(http.MethodPost, http.MethodOptions)
	game.HandleFunc("/leaderboard", h.Leaderboard).Methods(http.MethodGet, http.MethodOptions)
	game.Handle("/leaderboard/overall",
		h.Authenticator.Middleware(auth.Require(auth.CapViewBoards, h.OverallLeaderboard))).
		Methods(http.MethodGet, http.MethodOptions)

	players := apiRouter.PathPrefix("/players").Subrouter()
	players.Use(h.Authenticator.Middleware)
	players.HandleFunc("", auth.Require(auth.CapManagePlayers, h.ListPlayers)).
		Methods(http.MethodGet, http.MethodOptions)
	players.HandleFunc("", auth.Require(auth.CapManagePlayers, h.CreatePlayer)).
		Methods(http.MethodPost)
	players.HandleFunc("/{id}", auth.Require(auth.CapManagePlayers, h.DeletePlayer)).
		Methods(http.MethodDelete, http.MethodOptions)

	groups := apiRouter.PathPrefix("/groups").Subrouter()
	groups.Use(h.Authenticator.Middleware)
	groups.HandleFunc("", auth.Require(auth.CapViewGroups, h.ListGroups)).
		Methods(http.MethodGet, http.MethodOptions)
	groups.HandleFunc("", auth.Require(auth.CapManageGroups, h.CreateGroup)).
		Methods(http.MethodPost)
	groups.HandleFunc("/update-times/{groupId}", auth.Require(auth.CapManageGroups, h.RescheduleGroups)).
		Methods(http.MethodPut, http.MethodOptions)
	groups.HandleFunc("/{id}", auth.Require(auth.CapManageGroups, h.UpdateGroupTime)).
		Methods(http.MethodPut, http.MethodOptions)
	groups.HandleFunc("/{groupId}/players/{playerId}", auth.Require(auth.CapManageGroups, h.AddPlayerToGroup)).
		Methods(http.MethodPost, http.MethodOptions)
	groups.HandleFunc("/{groupId}/players/{playerId}", auth.Require(auth.CapManageGroups, h.RemovePlayerFromGroup)).
		Methods(http.MethodDelete)

	rounds := apiRouter.PathPrefix("/rounds").Subrouter()
	rounds.Use(h.Authenticator.Middleware)
	rounds.HandleFunc("/current", auth.Require(auth.CapManageRounds, h.CurrentRound)).
		Methods(http.MethodGet, http.MethodOptions)
	rounds.HandleFunc("/start", auth.Require(auth.CapManageRounds, h.StartRound)).
		Methods(http.MethodPost, http.MethodOptions)
	rounds.HandleFunc("/end", auth.Require(auth.CapManageRounds, h.EndRound)).
		Methods(http.MethodPost, http.MethodOptions)
	rounds.HandleFunc("/add-time", auth.Require(auth.CapManageRounds, h.AddTime)).
		Methods(http.MethodPost, http.MethodOptions)
	rounds.HandleFunc("/update-time", auth.Require(auth.CapManageRounds, h.UpdateRoundTime)).
		Methods(http.MethodPut, http.MethodOptions)

	flags := apiRouter.PathPrefix("/flags").Subrouter()
	flags.Use(h.Authenticator.Middleware)
	flags.HandleFunc("", auth.Require(auth.CapManageFlags, h.ListFlags)).
		Methods(http.MethodGet, http.MethodOptions)
	flags.HandleFunc("", auth.Require(auth.CapManageFlags, h.CreateFlag)).
		Methods(http.MethodPost)
	flags.HandleFunc("/{id}", auth.Require(auth.CapManageFlags, h.DeleteFlag)).
		Methods(http.MethodDelete, http.MethodOptions)
}

// writeServiceError maps service-layer errors to user-facing HTTP responses
// without leaking internals.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPlayerNotFound):
		api.WriteNotFound(w, "Player not found.")
	case errors.Is(err, service.ErrGroupNotFound):
		api.WriteNotFound(w, "Group not found.")
	case errors.Is(err, service.ErrFlagNotFound):
		api.WriteNotFound(w, "Invalid Flag Code.")
	case errors.Is(err, service.ErrNoActiveRound):
		api.WriteBadRequest(w, "No active round.")
	case errors.Is(err, service.ErrGroupFull):
		api.WriteConflict(w, "Group is full.")
	case errors.Is(err, service.ErrDuplicateHandle):
		api.WriteConflict(w, "User already registered.")
	case errors.Is(err, service.ErrDuplicateFlagCode):
		api.WriteConflict(w, "Flag code already exists.")
	case errors.Is(err, scoring.ErrAlreadyCaptured):
		api.WriteConflict(w, "Flag already captured!")
	case errors.Is(err, scoring.ErrWrongSet):
		api.WriteBadRequest(w, "This flag is not active for the current round.")
	case errors.Is(err, service.ErrInvalidFlagSet):
		api.WriteBadRequest(w, "Flag set must be between 1 and 6.")
	case errors.Is(err, service.ErrInvalidPoints):
		api.WriteBadRequest(w, "Flag points must be positive.")
	case errors.Is(err, service.ErrUnknownTimeTarget):
		api.WriteBadRequest(w, "Unknown add-time target.")
	case errors.Is(err, service.ErrInvalidSession):
		api.WriteUnauthorized(w, "Invalid or Inactive Session ID.")
	case errors.Is(err, service.ErrSessionExpired):
		api.WriteUnauthorized(w, "Session ID has expired.")
	case errors.Is(err, service.ErrInvalidCredentials):
		api.WriteUnauthorized(w, "Invalid credentials.")
	default:
		log.Printf("ERROR: Unhandled service error: %v", err)
		api.WriteInternalServerError(w, "Server error.")
	}
}

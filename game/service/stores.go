// game/service/stores.go
package service

import (
	"context"
	"time"

	"github.com/ctfarena/arena-services/shared/models"
)

// Consumer-side views of the stores. The Mongo/Redis stores in game/store
// satisfy these; tests substitute in-memory fakes.

type PlayerStore interface {
	CreatePlayer(ctx context.Context, player *models.Player) error
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	GetPlayerByWhatsapp(ctx context.Context, whatsapp string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListPlayersByIDs(ctx context.Context, ids []string) ([]models.Player, error)
	ListUngroupedPlayers(ctx context.Context) ([]models.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	SetPlayerGroup(ctx context.Context, playerID, groupID string) error
	ClearPlayerGroup(ctx context.Context, playerID string) error
	ApplyAward(ctx context.Context, playerID string, points float64, flagID string, at time.Time) error
	AddExtraTime(ctx context.Context, playerID string, seconds int64) error
	SetPlayersStatus(ctx context.Context, ids []string, status string) error
	FinishPlayers(ctx context.Context, ids []string) error
	GroupLeaderboard(ctx context.Context, groupID string) ([]models.Player, error)
	OverallLeaderboard(ctx context.Context) ([]models.Player, error)
}

type GroupStore interface {
	InsertGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	ListPendingGroups(ctx context.Context) ([]models.Group, error)
	NextTeamNumber(ctx context.Context) (int, error)
	LatestStartTime(ctx context.Context) (time.Time, error)
	AddPlayer(ctx context.Context, groupID, playerID string) error
	RemovePlayer(ctx context.Context, groupID, playerID string) error
	RemovePlayerFromAllGroups(ctx context.Context, playerID string) error
	DeleteEmptyGroups(ctx context.Context) error
	SetCurrentGroup(ctx context.Context, groupID string) error
	MarkGroupCompleted(ctx context.Context, groupID string) error
	UpdateStartTime(ctx context.Context, groupID string, startTime time.Time) error
}

type FlagStore interface {
	InsertFlag(ctx context.Context, flag *models.Flag) error
	ListFlags(ctx context.Context) ([]models.Flag, error)
	ListFlagsBySet(ctx context.Context, setNumber int) ([]models.Flag, error)
	GetFlagByCode(ctx context.Context, code string) (*models.Flag, error)
	DeleteFlag(ctx context.Context, id string) error
}

type RoundStore interface {
	InsertRound(ctx context.Context, round *models.Round) error
	ActiveRound(ctx context.Context) (*models.Round, error)
	ActiveRoundBySession(ctx context.Context, sessionID string) (*models.Round, error)
	LatestEndedRound(ctx context.Context) (*models.Round, error)
	ArchiveActiveRounds(ctx context.Context, endTime time.Time) error
	FinalizeRound(ctx context.Context, id string, endTime time.Time) error
	AddRemainingTime(ctx context.Context, seconds int64) error
	AddRemainingTimeForGroup(ctx context.Context, groupID string, seconds int64) error
	SetRemainingTime(ctx context.Context, seconds int64) error
}

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
}

type SessionStore interface {
	PutSession(ctx context.Context, token, roundID string, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, token string) error
}

// CountdownDriver is the round services' handle on the global countdown task.
type CountdownDriver interface {
	Start()
	Stop()
}

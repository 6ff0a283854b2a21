// game/service/fakes_test.go
package service

import (
	"context"
	"sort"
	"time"

	"github.com/ctfarena/arena-services/game/store"
	"github.com/ctfarena/arena-services/shared/models"
)

// In-memory stand-ins for the Mongo/Redis stores. They mirror the real
// stores' sentinel error behavior so the services under test cannot tell
// the difference.

type fakePlayerStore struct {
	players map[string]*models.Player
	order   []string
}

func newFakePlayerStore() *fakePlayerStore {
	return &fakePlayerStore{players: map[string]*models.Player{}}
}

func (f *fakePlayerStore) CreatePlayer(_ context.Context, player *models.Player) error {
	for _, existing := range f.players {
		if existing.Whatsapp == player.Whatsapp {
			return store.ErrDuplicate
		}
	}
	clone := *player
	f.players[player.ID] = &clone
	f.order = append(f.order, player.ID)
	return nil
}

func (f *fakePlayerStore) GetPlayer(_ context.Context, id string) (*models.Player, error) {
	player, ok := f.players[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *player
	return &clone, nil
}

func (f *fakePlayerStore) GetPlayerByWhatsapp(_ context.Context, whatsapp string) (*models.Player, error) {
	for _, player := range f.players {
		if player.Whatsapp == whatsapp {
			clone := *player
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakePlayerStore) ListPlayers(_ context.Context) ([]models.Player, error) {
	out := make([]models.Player, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.players[id])
	}
	return out, nil
}

func (f *fakePlayerStore) ListPlayersByIDs(_ context.Context, ids []string) ([]models.Player, error) {
	out := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		if player, ok := f.players[id]; ok {
			out = append(out, *player)
		}
	}
	return out, nil
}

func (f *fakePlayerStore) ListUngroupedPlayers(_ context.Context) ([]models.Player, error) {
	out := make([]models.Player, 0)
	for _, id := range f.order {
		player := f.players[id]
		if player.GroupID == "" && !player.AlreadyPlayed {
			out = append(out, *player)
		}
	}
	return out, nil
}

func (f *fakePlayerStore) DeletePlayer(_ context.Context, id string) error {
	if _, ok := f.players[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.players, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakePlayerStore) SetPlayerGroup(_ context.Context, playerID, groupID string) error {
	player, ok := f.players[playerID]
	if !ok {
		return store.ErrNotFound
	}
	player.GroupID = groupID
	return nil
}

func (f *fakePlayerStore) ClearPlayerGroup(_ context.Context, playerID string) error {
	player, ok := f.players[playerID]
	if !ok {
		return store.ErrNotFound
	}
	player.GroupID = ""
	return nil
}

func (f *fakePlayerStore) ApplyAward(_ context.Context, playerID string, points float64, flagID string, at time.Time) error {
	player, ok := f.players[playerID]
	if !ok {
		return store.ErrNotFound
	}
	player.Score += points
	player.SolvedFlags = append(player.SolvedFlags, flagID)
	player.LastSubmissionTime = &at
	return nil
}

func (f *fakePlayerStore) AddExtraTime(_ context.Context, playerID string, seconds int64) error {
	player, ok := f.players[playerID]
	if !ok {
		return store.ErrNotFound
	}
	player.ExtraTime += seconds
	return nil
}

func (f *fakePlayerStore) SetPlayersStatus(_ context.Context, ids []string, status string) error {
	for _, id := range ids {
		if player, ok := f.players[id]; ok {
			player.Status = status
		}
	}
	return nil
}

func (f *fakePlayerStore) FinishPlayers(_ context.Context, ids []string) error {
	for _, id := range ids {
		if player, ok := f.players[id]; ok {
			player.Status = models.PlayerStatusFinished
			player.AlreadyPlayed = true
		}
	}
	return nil
}

func (f *fakePlayerStore) GroupLeaderboard(_ context.Context, groupID string) ([]models.Player, error) {
	out := make([]models.Player, 0)
	for _, id := range f.order {
		if f.players[id].GroupID == groupID {
			out = append(out, *f.players[id])
		}
	}
	sortLeaderboard(out)
	return out, nil
}

func (f *fakePlayerStore) OverallLeaderboard(_ context.Context) ([]models.Player, error) {
	out := make([]models.Player, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.players[id])
	}
	sortLeaderboard(out)
	return out, nil
}

func sortLeaderboard(players []models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		ti, tj := players[i].LastSubmissionTime, players[j].LastSubmissionTime
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.Before(*tj)
	})
}

type fakeGroupStore struct {
	groups map[string]*models.Group
	order  []string
	seq    int
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{groups: map[string]*models.Group{}}
}

func (f *fakeGroupStore) InsertGroup(_ context.Context, group *models.Group) error {
	clone := *group
	f.groups[group.ID] = &clone
	f.order = append(f.order, group.ID)
	return nil
}

func (f *fakeGroupStore) GetGroup(_ context.Context, id string) (*models.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *group
	return &clone, nil
}

func (f *fakeGroupStore) ListGroups(_ context.Context) ([]models.Group, error) {
	out := make([]models.Group, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.groups[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeGroupStore) ListPendingGroups(ctx context.Context) ([]models.Group, error) {
	all, _ := f.ListGroups(ctx)
	out := make([]models.Group, 0, len(all))
	for _, group := range all {
		if !group.RoundCompleted {
			out = append(out, group)
		}
	}
	return out, nil
}

func (f *fakeGroupStore) NextTeamNumber(_ context.Context) (int, error) {
	f.seq++
	return f.seq, nil
}

func (f *fakeGroupStore) LatestStartTime(_ context.Context) (time.Time, error) {
	var latest time.Time
	for _, group := range f.groups {
		if group.StartTime.After(latest) {
			latest = group.StartTime
		}
	}
	if latest.IsZero() {
		return time.Time{}, store.ErrNotFound
	}
	return latest, nil
}

func (f *fakeGroupStore) AddPlayer(_ context.Context, groupID, playerID string) error {
	group, ok := f.groups[groupID]
	if !ok {
		return store.ErrNotFound
	}
	for _, id := range group.PlayerIDs {
		if id == playerID {
			return nil
		}
	}
	group.PlayerIDs = append(group.PlayerIDs, playerID)
	return nil
}

func (f *fakeGroupStore) RemovePlayer(_ context.Context, groupID, playerID string) error {
	group, ok := f.groups[groupID]
	if !ok {
		return store.ErrNotFound
	}
	for i, id := range group.PlayerIDs {
		if id == playerID {
			group.PlayerIDs = append(group.PlayerIDs[:i], group.PlayerIDs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeGroupStore) RemovePlayerFromAllGroups(ctx context.Context, playerID string) error {
	for id := range f.groups {
		if err := f.RemovePlayer(ctx, id, playerID); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGroupStore) DeleteEmptyGroups(_ context.Context) error {
	for id, group := range f.groups {
		if len(group.PlayerIDs) == 0 {
			delete(f.groups, id)
			for i, existing := range f.order {
				if existing == id {
					f.order = append(f.order[:i], f.order[i+1:]...)
					break
				}
			}
		}
	}
	return nil
}

func (f *fakeGroupStore) SetCurrentGroup(_ context.Context, groupID string) error {
	for id, group := range f.groups {
		group.CurrentRound = id == groupID
	}
	return nil
}

func (f *fakeGroupStore) MarkGroupCompleted(_ context.Context, groupID string) error {
	group, ok := f.groups[groupID]
	if !ok {
		return store.ErrNotFound
	}
	group.RoundCompleted = true
	group.CurrentRound = false
	return nil
}

func (f *fakeGroupStore) UpdateStartTime(_ context.Context, groupID string, startTime time.Time) error {
	group, ok := f.groups[groupID]
	if !ok {
		return store.ErrNotFound
	}
	group.StartTime = startTime
	return nil
}

type fakeFlagStore struct {
	flags map[string]*models.Flag
}

func newFakeFlagStore() *fakeFlagStore {
	return &fakeFlagStore{flags: map[string]*models.Flag{}}
}

func (f *fakeFlagStore) InsertFlag(_ context.Context, flag *models.Flag) error {
	for _, existing := range f.flags {
		if existing.Code == flag.Code {
			return store.ErrDuplicate
		}
	}
	clone := *flag
	f.flags[flag.ID] = &clone
	return nil
}

func (f *fakeFlagStore) ListFlags(_ context.Context) ([]models.Flag, error) {
	out := make([]models.Flag, 0, len(f.flags))
	for _, flag := range f.flags {
		out = append(out, *flag)
	}
	return out, nil
}

func (f *fakeFlagStore) ListFlagsBySet(_ context.Context, setNumber int) ([]models.Flag, error) {
	out := make([]models.Flag, 0)
	for _, flag := range f.flags {
		if flag.SetNumber == setNumber {
			out = append(out, *flag)
		}
	}
	return out, nil
}

func (f *fakeFlagStore) GetFlagByCode(_ context.Context, code string) (*models.Flag, error) {
	for _, flag := range f.flags {
		if flag.Code == code {
			clone := *flag
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeFlagStore) DeleteFlag(_ context.Context, id string) error {
	if _, ok := f.flags[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.flags, id)
	return nil
}

type fakeRoundStore struct {
	rounds []*models.Round
}

func newFakeRoundStore() *fakeRoundStore {
	return &fakeRoundStore{}
}

func (f *fakeRoundStore) InsertRound(_ context.Context, round *models.Round) error {
	clone := *round
	f.rounds = append(f.rounds, &clone)
	return nil
}

func (f *fakeRoundStore) ActiveRound(_ context.Context) (*models.Round, error) {
	for _, round := range f.rounds {
		if round.Active {
			clone := *round
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRoundStore) ActiveRoundBySession(_ context.Context, sessionID string) (*models.Round, error) {
	for _, round := range f.rounds {
		if round.Active && round.SessionID == sessionID {
			clone := *round
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRoundStore) LatestEndedRound(_ context.Context) (*models.Round, error) {
	var latest *models.Round
	for _, round := range f.rounds {
		if round.Active || round.EndTime == nil {
			continue
		}
		if latest == nil || round.EndTime.After(*latest.EndTime) {
			latest = round
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

func (f *fakeRoundStore) ArchiveActiveRounds(_ context.Context, endTime time.Time) error {
	for _, round := range f.rounds {
		if round.Active {
			round.Active = false
			end := endTime
			round.EndTime = &end
		}
	}
	return nil
}

func (f *fakeRoundStore) FinalizeRound(_ context.Context, id string, endTime time.Time) error {
	for _, round := range f.rounds {
		if round.ID == id {
			round.Active = false
			end := endTime
			round.EndTime = &end
			round.RemainingTime = 0
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRoundStore) AddRemainingTime(_ context.Context, seconds int64) error {
	for _, round := range f.rounds {
		if round.Active {
			round.RemainingTime += seconds
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRoundStore) AddRemainingTimeForGroup(_ context.Context, groupID string, seconds int64) error {
	for _, round := range f.rounds {
		if round.Active && round.GroupID == groupID {
			round.RemainingTime += seconds
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRoundStore) SetRemainingTime(_ context.Context, seconds int64) error {
	for _, round := range f.rounds {
		if round.Active {
			round.RemainingTime = seconds
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRoundStore) activeCount() int {
	n := 0
	for _, round := range f.rounds {
		if round.Active {
			n++
		}
	}
	return n
}

type fakeSessionStore struct {
	sessions map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]string{}}
}

func (f *fakeSessionStore) PutSession(_ context.Context, token, roundID string, _ time.Duration) error {
	f.sessions[token] = roundID
	return nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, token string) (string, error) {
	roundID, ok := f.sessions[token]
	if !ok {
		return "", store.ErrNotFound
	}
	return roundID, nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) InsertUser(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.Username]; ok {
		return store.ErrDuplicate
	}
	clone := *user
	f.users[user.Username] = &clone
	return nil
}

type fakeDriver struct {
	starts int
	stops  int
}

func (f *fakeDriver) Start() { f.starts++ }
func (f *fakeDriver) Stop()  { f.stops++ }

// shared/models/player.go
package models

import "time"

// Player statuses as stored on the player document.
const (
	PlayerStatusRegistered = "registered"
	PlayerStatusPlaying    = "playing"
	PlayerStatusFinished   = "finished"
)

// Player represents a participant's profile stored persistently in MongoDB.
// Score and SolvedFlags are mutated only through flag submission; GroupID is
// kept after a round ends so finished players stay resolvable for leaderboards.
type Player struct {
	ID                 string     `bson:"_id" json:"id"`
	Name               string     `bson:"name" json:"name"`
	Whatsapp           string     `bson:"whatsapp" json:"whatsapp"`
	GroupID            string     `bson:"group_id,omitempty" json:"groupId,omitempty"`
	Score              float64    `bson:"score" json:"score"`
	SolvedFlags        []string   `bson:"solved_flags" json:"solvedFlags"`
	LastSubmissionTime *time.Time `bson:"last_submission_time,omitempty" json:"lastSubmissionTime,omitempty"`
	Status             string     `bson:"status" json:"status"`
	AlreadyPlayed      bool       `bson:"already_played" json:"alreadyPlayed"`
	ExtraTime          int64      `bson:"extra_time" json:"extraTime"` // admin-granted seconds on top of the round clock
	CreatedAt          *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}

// HasSolved reports whether the player already captured the given flag.
func (p *Player) HasSolved(flagID string) bool {
	for _, id := range p.SolvedFlags {
		if id == flagID {
			return true
		}
	}
	return false
}

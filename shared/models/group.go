// shared/models/group.go
package models

import "time"

// MaxGroupSize is the hard cap on players per team, enforced at add-time.
const MaxGroupSize = 6

// Group represents a team of players. StartTime is an advisory schedule slot;
// the actual round start is always admin-triggered. At most one group holds
// CurrentRound = true at a time.
type Group struct {
	ID             string     `bson:"_id" json:"id"`
	Name           string     `bson:"name" json:"name"`
	PlayerIDs      []string   `bson:"players" json:"playerIds"`
	StartTime      time.Time  `bson:"start_time" json:"startTime"`
	RoundCompleted bool       `bson:"round_completed" json:"roundCompleted"`
	CurrentRound   bool       `bson:"current_round" json:"currentRound"`
	CreatedAt      *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}

// PopulatedGroup is a group with its player references resolved to documents.
type PopulatedGroup struct {
	Group
	Players []Player `bson:"-" json:"players"`
}

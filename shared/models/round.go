// shared/models/round.go
package models

import "time"

// Round is the single source of truth for what is happening right now.
// At most one round has Active = true system-wide. RemainingTime is the
// authoritative countdown value, decremented once per second by the
// countdown driver and persisted after every decrement. Ended rounds are
// archived, never deleted, so leaderboards stay queryable afterwards.
type Round struct {
	ID               string     `bson:"_id" json:"id"`
	GroupID          string     `bson:"group_id" json:"groupId"`
	StartTime        time.Time  `bson:"start_time" json:"startTime"`
	EndTime          *time.Time `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Active           bool       `bson:"active" json:"active"`
	RemainingTime    int64      `bson:"remaining_time" json:"remainingTime"` // seconds
	FlagSet          int        `bson:"flag_set" json:"flagSet"`
	SessionID        string     `bson:"session_id" json:"sessionId"`
	SessionExpiresAt time.Time  `bson:"session_expires_at" json:"sessionExpiresAt"`
}

// PopulatedRound is a round with its group and that group's players resolved.
type PopulatedRound struct {
	Round
	Group *PopulatedGroup `bson:"-" json:"group,omitempty"`
}

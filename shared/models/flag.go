// shared/models/flag.go
package models

import "time"

// Flag set numbers partition the flag pool into per-round task pools.
const (
	MinFlagSet = 1
	MaxFlagSet = 6
)

// Flag is a capturable challenge. Code is the only thing compared against
// player submissions and is unique across all sets; the descriptive fields
// are display-only and never influence scoring.
type Flag struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	Link        string     `bson:"link,omitempty" json:"link,omitempty"`
	Code        string     `bson:"code" json:"code"`
	Points      float64    `bson:"points" json:"points"`
	SetNumber   int        `bson:"set_number" json:"setNumber"`
	CreatedAt   *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}

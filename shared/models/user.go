// shared/models/user.go
package models

// Admin roles.
const (
	RoleSuperAdmin    = "super_admin"
	RolePlayerManager = "player_manager"
	RoleRoundManager  = "round_manager"
)

// User is an admin console identity. Seeded at startup; not part of the
// game-state core.
type User struct {
	ID           string `bson:"_id" json:"id"`
	Username     string `bson:"username" json:"username"`
	PasswordHash string `bson:"password" json:"-"`
	Role         string `bson:"role" json:"role"`
	Name         string `bson:"name" json:"name"`
}

// shared/auth/capability.go
package auth

import "github.com/ctfarena/arena-services/shared/models"

// Capability names one admin operation family.
type Capability string

const (
	CapManagePlayers Capability = "players:manage"
	CapManageGroups  Capability = "groups:manage"
	CapViewGroups    Capability = "groups:view"
	CapManageRounds  Capability = "rounds:manage"
	CapManageFlags   Capability = "flags:manage"
	CapViewBoards    Capability = "leaderboard:view"
)

// roleCapabilities is the single role -> allowed-operations table. Flag
// management stays exclusive to the super admin.
var roleCapabilities = map[string][]Capability{
	models.RoleSuperAdmin: {
		CapManagePlayers, CapManageGroups, CapViewGroups,
		CapManageRounds, CapManageFlags, CapViewBoards,
	},
	models.RolePlayerManager: {
		CapManagePlayers, CapManageGroups, CapViewGroups, CapViewBoards,
	},
	models.RoleRoundManager: {
		CapManageRounds, CapViewGroups, CapViewBoards,
	},
}

// RoleHas reports whether the given role holds a capability.
func RoleHas(role string, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}

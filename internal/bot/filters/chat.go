// Package filters решает, в какой роли пришло событие.
package filters

import (
	log "github.com/sirupsen/logrus"
)

// Role: роль отправителя.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// adminChecker: то, что умеет отвечать «админ ли это» (config.Config).
type adminChecker interface {
	IsAdmin(userID int64) bool
}

// RoleFilter определяет роль по списку ADMIN_IDS.
type RoleFilter struct {
	admins adminChecker
}

func NewRoleFilter(admins adminChecker) *RoleFilter {
	return &RoleFilter{admins: admins}
}

// RoleOf возвращает роль пользователя. userID == 0: всегда пользователь.
func (f *RoleFilter) RoleOf(userID int64) Role {
	if userID == 0 || f.admins == nil {
		return RoleUser
	}
	if f.admins.IsAdmin(userID) {
		log.WithFields(log.Fields{
			"component": "RoleFilter",
			"user_id":   userID,
		}).Debug("allow: admin")
		return RoleAdmin
	}
	return RoleUser
}

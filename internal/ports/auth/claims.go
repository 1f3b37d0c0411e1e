package auth

import "strings"

const RoleAdmin = "admin"

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Roles  []string
}

func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

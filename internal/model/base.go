package model

import (
	"strings"

	"github.com/google/uuid"
)

// newID returns a fresh entity id
func newID() string {
	return uuid.NewString()
}

// Season is the selling season of a product
type Season string

const (
	SeasonFall   Season = "FALL"
	SeasonWinter Season = "WINTER"
	SeasonSpring Season = "SPRING"
	SeasonSummer Season = "SUMMER"
)

// Seasons lists every season in display order
var Seasons = []Season{SeasonFall, SeasonWinter, SeasonSpring, SeasonSummer}

// Valid reports whether s is one of the known seasons
func (s Season) Valid() bool {
	switch s {
	case SeasonFall, SeasonWinter, SeasonSpring, SeasonSummer:
		return true
	}
	return false
}

// ParseSeason accepts a season name in any case
func ParseSeason(value string) (Season, bool) {
	s := Season(strings.ToUpper(strings.TrimSpace(value)))
	return s, s.Valid()
}

// Role is an employee's access level
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleSeller Role = "SELLER"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller
}

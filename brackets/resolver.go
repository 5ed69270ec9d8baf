package brackets

import (
	"github.com/beachpoint/portal/models"
)

// UnknownPlayer is the display placeholder used when a match references a
// registration or a player slot that no longer exists. Matches must always
// render, even with stale references.
const UnknownPlayer = "Desconhecido"

// MatchSide is one side of a resolved match: up to two players for doubles,
// one for singles. Names fall back to UnknownPlayer for stale references.
type MatchSide struct {
	RegistrationID int             `json:"registration_id"`
	Players        []models.Player `json:"players"`
	Names          []string        `json:"names"`
}

// ResolvedMatch is a match with both registration references followed down
// to concrete players.
type ResolvedMatch struct {
	Match models.Match `json:"match"`
	Side1 MatchSide    `json:"side1"`
	Side2 MatchSide    `json:"side2"`
}

// Resolver answers "who is playing whom" over one category's collections.
// It is a pure view over the provided slices: fixed inputs always produce
// identical outputs, and no lookup ever panics on a stale id.
type Resolver struct {
	registrations []models.CategoryRegistration
	byID          map[int]models.CategoryRegistration
	players       map[int]models.Player
}

// NewResolver indexes the registrations of one tournament+category.
// Player records nested on registrations feed the player index.
func NewResolver(registrations []models.CategoryRegistration) *Resolver {
	r := &Resolver{
		registrations: registrations,
		byID:          make(map[int]models.CategoryRegistration, len(registrations)),
		players:       make(map[int]models.Player),
	}
	for _, reg := range registrations {
		if _, ok := r.byID[reg.ID]; !ok {
			r.byID[reg.ID] = reg
		}
		if reg.Player1 != nil {
			r.players[reg.Player1.ID] = *reg.Player1
		}
		if reg.Player2 != nil {
			r.players[reg.Player2.ID] = *reg.Player2
		}
	}
	return r
}

// ResolvePlayer returns the first registration holding the player in either
// slot, or nil. A missing registration is a legitimate outcome (removed
// player, inconsistent data), not an error.
func (r *Resolver) ResolvePlayer(playerID int) *models.CategoryRegistration {
	for i := range r.registrations {
		if r.registrations[i].HasPlayer(playerID) {
			reg := r.registrations[i]
			return &reg
		}
	}
	return nil
}

// ResolveRegistration looks a registration up by id, nil if absent.
func (r *Resolver) ResolveRegistration(registrationID int) *models.CategoryRegistration {
	reg, ok := r.byID[registrationID]
	if !ok {
		return nil
	}
	return &reg
}

// ResolveMatch follows both registration references of a match down to
// players. Missing registrations and empty player slots degrade to the
// UnknownPlayer placeholder.
func (r *Resolver) ResolveMatch(match models.Match) ResolvedMatch {
	return ResolvedMatch{
		Match: match,
		Side1: r.resolveSide(match.CategoryRegistrationID1),
		Side2: r.resolveSide(match.CategoryRegistrationID2),
	}
}

func (r *Resolver) resolveSide(registrationID int) MatchSide {
	side := MatchSide{RegistrationID: registrationID}
	reg := r.ResolveRegistration(registrationID)
	if reg == nil {
		side.Names = []string{UnknownPlayer, UnknownPlayer}
		return side
	}

	side.appendSlot(r, reg.Player1ID)
	if reg.Player2ID != nil {
		side.appendSlot(r, *reg.Player2ID)
	}
	return side
}

func (s *MatchSide) appendSlot(r *Resolver, playerID int) {
	if p, ok := r.players[playerID]; ok {
		s.Players = append(s.Players, p)
		s.Names = append(s.Names, p.FullName())
		return
	}
	s.Names = append(s.Names, UnknownPlayer)
}

// GroupMatches filters matches belonging to a group, input order preserved.
// No ordering guarantee beyond input order is implied.
func GroupMatches(group models.Group, matches []models.Match) []models.Match {
	out := make([]models.Match, 0)
	for _, m := range matches {
		if m.GroupID == group.ID {
			out = append(out, m)
		}
	}
	return out
}

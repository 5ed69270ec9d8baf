package brackets

import (
	"reflect"
	"testing"

	"github.com/beachpoint/portal/models"
)

func testRegistrations() []models.CategoryRegistration {
	p2 := 2
	p4 := 4
	return []models.CategoryRegistration{
		{
			ID: 100, TournamentID: 7, CategoryID: 10,
			Player1ID: 1, Player2ID: &p2,
			Player1: &models.Player{ID: 1, Name: "Ana", MiddleName: "Souza"},
			Player2: &models.Player{ID: 2, Name: "Bruno", MiddleName: "Lima"},
		},
		{
			ID: 101, TournamentID: 7, CategoryID: 10,
			Player1ID: 3, Player2ID: &p4,
			Player1: &models.Player{ID: 3, Name: "Carla", MiddleName: "Dias"},
			// Player2 удалён из базы: слот без вложенной записи.
		},
	}
}

func TestResolveMatch(t *testing.T) {
	r := NewResolver(testRegistrations())
	match := models.Match{ID: 1, GroupID: 1, CategoryRegistrationID1: 100, CategoryRegistrationID2: 101}

	resolved := r.ResolveMatch(match)

	if got := resolved.Side1.Names; !reflect.DeepEqual(got, []string{"Ana Souza", "Bruno Lima"}) {
		t.Errorf("side1 names = %v", got)
	}
	// Слот с потерянным игроком деградирует в заглушку, а не в панику.
	if got := resolved.Side2.Names; !reflect.DeepEqual(got, []string{"Carla Dias", UnknownPlayer}) {
		t.Errorf("side2 names = %v", got)
	}
}

func TestResolveMatchStaleRegistration(t *testing.T) {
	r := NewResolver(testRegistrations())
	match := models.Match{ID: 2, CategoryRegistrationID1: 100, CategoryRegistrationID2: 999}

	resolved := r.ResolveMatch(match)

	want := []string{UnknownPlayer, UnknownPlayer}
	if got := resolved.Side2.Names; !reflect.DeepEqual(got, want) {
		t.Errorf("stale side names = %v, want %v", got, want)
	}
	if resolved.Side2.Players != nil {
		t.Errorf("stale side players = %v, want none", resolved.Side2.Players)
	}
}

func TestResolveMatchIsIdempotent(t *testing.T) {
	r := NewResolver(testRegistrations())
	match := models.Match{ID: 1, CategoryRegistrationID1: 100, CategoryRegistrationID2: 101}

	first := r.ResolveMatch(match)
	second := r.ResolveMatch(match)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated resolution differs:\n%+v\n%+v", first, second)
	}
}

func TestResolvePlayerFirstMatchWins(t *testing.T) {
	regs := testRegistrations()
	// Игрок 1 фигурирует в двух регистрациях.
	regs = append(regs, models.CategoryRegistration{ID: 102, Player1ID: 1})
	r := NewResolver(regs)

	reg := r.ResolvePlayer(1)
	if reg == nil || reg.ID != 100 {
		t.Fatalf("ResolvePlayer(1) = %+v, want registration 100", reg)
	}
	if r.ResolvePlayer(99) != nil {
		t.Error("ResolvePlayer(99) should be nil for unknown player")
	}
	// Игрок во втором слоте тоже находится.
	if reg := r.ResolvePlayer(4); reg == nil || reg.ID != 101 {
		t.Errorf("ResolvePlayer(4) = %+v, want registration 101", reg)
	}
}

func TestResolveRegistrationAbsent(t *testing.T) {
	r := NewResolver(testRegistrations())
	if got := r.ResolveRegistration(999); got != nil {
		t.Errorf("ResolveRegistration(999) = %+v, want nil", got)
	}
}

func TestGroupMatchesPreservesInputOrder(t *testing.T) {
	group := models.Group{ID: 1, GroupNumber: 1}
	matches := []models.Match{
		{ID: 3, GroupID: 1},
		{ID: 1, GroupID: 2},
		{ID: 2, GroupID: 1},
	}

	got := GroupMatches(group, matches)
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 2 {
		t.Errorf("GroupMatches = %+v, want matches 3 then 2", got)
	}
	if empty := GroupMatches(models.Group{ID: 9}, matches); len(empty) != 0 {
		t.Errorf("GroupMatches(empty group) = %+v, want empty", empty)
	}
}

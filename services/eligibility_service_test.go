package services

import (
	"testing"

	"github.com/beachpoint/portal/models"
)

func TestEligibleCategoriesBiconditional(t *testing.T) {
	genders := []models.CategoryGender{models.GenderMasculino, models.GenderFeminino, models.GenderMista}
	svc := NewEligibilityService()

	for _, categoryGender := range genders {
		for _, playerGender := range []models.CategoryGender{models.GenderMasculino, models.GenderFeminino} {
			catalog := []models.Category{
				{ID: 1, Name: "c", Gender: categoryGender, GameType: models.GameSimples},
			}
			simples, duplas := svc.EligibleCategories(catalog, playerGender)
			got := len(simples)+len(duplas) == 1
			want := categoryGender == models.GenderMista || categoryGender == playerGender
			if got != want {
				t.Errorf("category %s, player %s: eligible = %v, want %v", categoryGender, playerGender, got, want)
			}
		}
	}
}

func TestEligibleCategoriesScenario(t *testing.T) {
	// Турнир: [Simples/Masculino, Duplas/Feminino, Duplas/Mista], игрок Masculino.
	catalog := []models.Category{
		{ID: 1, Name: "Simples Masculino", Gender: models.GenderMasculino, GameType: models.GameSimples},
		{ID: 2, Name: "Duplas Feminino", Gender: models.GenderFeminino, GameType: models.GameDuplas},
		{ID: 3, Name: "Duplas Mista", Gender: models.GenderMista, GameType: models.GameDuplas},
	}

	simples, duplas := NewEligibilityService().EligibleCategories(catalog, models.GenderMasculino)

	if len(simples) != 1 || simples[0].ID != 1 {
		t.Fatalf("simples = %+v, want only category 1", simples)
	}
	if len(duplas) != 1 || duplas[0].ID != 3 {
		t.Fatalf("duplas = %+v, want only category 3", duplas)
	}
}

func TestEligibleCategoriesStableOrder(t *testing.T) {
	catalog := []models.Category{
		{ID: 5, Gender: models.GenderMista, GameType: models.GameSimples},
		{ID: 2, Gender: models.GenderFeminino, GameType: models.GameSimples},
		{ID: 9, Gender: models.GenderFeminino, GameType: models.GameSimples},
		{ID: 1, Gender: models.GenderMista, GameType: models.GameDuplas},
	}

	simples, duplas := NewEligibilityService().EligibleCategories(catalog, models.GenderFeminino)

	wantSimples := []int{5, 2, 9}
	if len(simples) != len(wantSimples) {
		t.Fatalf("len(simples) = %d, want %d", len(simples), len(wantSimples))
	}
	for i, id := range wantSimples {
		if simples[i].ID != id {
			t.Errorf("simples[%d].ID = %d, want %d (input order must be preserved)", i, simples[i].ID, id)
		}
	}
	if len(duplas) != 1 || duplas[0].ID != 1 {
		t.Fatalf("duplas = %+v, want only category 1", duplas)
	}
}

func TestEligibleCategoriesEmptyResultIsNotError(t *testing.T) {
	catalog := []models.Category{
		{ID: 1, Gender: models.GenderFeminino, GameType: models.GameSimples},
	}

	simples, duplas := NewEligibilityService().EligibleCategories(catalog, models.GenderMasculino)

	if simples == nil || duplas == nil {
		t.Fatal("empty eligible sets must be empty slices, not nil")
	}
	if len(simples) != 0 || len(duplas) != 0 {
		t.Fatalf("want empty sets, got simples=%v duplas=%v", simples, duplas)
	}
}

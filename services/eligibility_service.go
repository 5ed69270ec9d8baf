package services

import "github.com/beachpoint/portal/models"

// EligibilityService вычисляет подмножество категорий, доступных игроку.
type EligibilityService struct{}

func NewEligibilityService() *EligibilityService {
	return &EligibilityService{}
}

// EligibleCategories отбирает категории, доступные игроку с данным гендером,
// и разбивает их по формату игры. Категория доступна, если она смешанная
// или её гендер совпадает с гендером игрока.
//
// Фильтр стабильный: порядок входного каталога сохраняется, пересортировки
// нет. Пустой результат — валидное состояние "нет доступных категорий",
// не ошибка.
func (s *EligibilityService) EligibleCategories(categories []models.Category, gender models.CategoryGender) (simples, duplas []models.Category) {
	simples = make([]models.Category, 0)
	duplas = make([]models.Category, 0)
	for _, c := range categories {
		if !c.AcceptsGender(gender) {
			continue
		}
		switch c.GameType {
		case models.GameDuplas:
			duplas = append(duplas, c)
		default:
			simples = append(simples, c)
		}
	}
	return simples, duplas
}

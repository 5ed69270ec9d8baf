package models

// CategoryGender — гендерное ограничение категории, соответствует ENUM бекенда.
type CategoryGender string

const (
	GenderMasculino CategoryGender = "Masculino"
	GenderFeminino  CategoryGender = "Feminino"
	GenderMista     CategoryGender = "Mista"
)

// GameType — формат игры категории.
type GameType string

const (
	GameSimples GameType = "Simples"
	GameDuplas  GameType = "Duplas"
)

// Category представляет категорию турнира.
type Category struct {
	ID               int            `json:"id"`
	TournamentID     int            `json:"tournament_id"`
	Name             string         `json:"name"`
	Gender           CategoryGender `json:"gender"`
	GameType         GameType       `json:"game_type"`
	MaxRegistrations int            `json:"max_registrations"`
	Status           string         `json:"status"`
}

// AcceptsGender сообщает, может ли игрок с данным гендером регистрироваться
// в категорию: смешанные категории открыты для всех.
func (c Category) AcceptsGender(gender CategoryGender) bool {
	return c.Gender == GenderMista || c.Gender == gender
}

package models

// CategoryRegistration связывает одного или двух игроков с категорией.
// Player2ID заполняется только для категорий Duplas.
type CategoryRegistration struct {
	ID           int  `json:"id"`
	TournamentID int  `json:"tournament_id"`
	CategoryID   int  `json:"category_id"`
	Player1ID    int  `json:"player1_id"`
	Player2ID    *int `json:"player2_id,omitempty"`

	Player1 *Player `json:"player1,omitempty"`
	Player2 *Player `json:"player2,omitempty"`
}

// HasPlayer сообщает, занимает ли игрок один из слотов регистрации.
func (r CategoryRegistration) HasPlayer(playerID int) bool {
	if r.Player1ID == playerID {
		return true
	}
	return r.Player2ID != nil && *r.Player2ID == playerID
}

// TournamentRegistrationInput — тело запроса регистрации на турнир (шаг 1).
type TournamentRegistrationInput struct {
	UserID       int    `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	CPF          string `json:"cpf"`
	Phone        string `json:"phone"`
	ShirtSize    string `json:"shirt_size"`
	Gender       string `json:"gender"`
	TournamentID int    `json:"tournament_id"`
}

// CategoryRegistrationInput — тело запроса регистрации в категорию (шаг 2).
type CategoryRegistrationInput struct {
	TournamentID int  `json:"tournament_id"`
	CategoryID   int  `json:"category_id"`
	Player1ID    int  `json:"player1_id"`
	Player2ID    *int `json:"player2_id"`
}

package models

import "time"

// TournamentStatus представляет статусы турнира, как их отдаёт бекенд.
type TournamentStatus string

const (
	TournamentAtivo     TournamentStatus = "ativo"
	TournamentConcluido TournamentStatus = "concluido"
	TournamentCancelado TournamentStatus = "cancelado"
)

// Tournament представляет турнир. Ядро портала никогда не мутирует турнир,
// он приходит из бекенда только для чтения.
type Tournament struct {
	ID               int              `json:"id"`
	EventName        string           `json:"event_name"`
	Status           TournamentStatus `json:"status"`
	RegistrationFrom time.Time        `json:"registration_from"`
	RegistrationTo   time.Time        `json:"registration_to"`
	OwnerID          int              `json:"owner_id"`
	BannerKey        *string          `json:"banner_key,omitempty"`
	BannerURL        *string          `json:"banner_url,omitempty"`
}

// OpenForRegistration сообщает, принимает ли турнир регистрации.
func (t Tournament) OpenForRegistration() bool {
	return t.Status == TournamentAtivo
}

package models

// Match ссылается на две регистрации, не на игроков напрямую.
// До игроков два перехода: Match → CategoryRegistration → Player.
type Match struct {
	ID                      int     `json:"id"`
	GroupID                 int     `json:"group_id"`
	CategoryRegistrationID1 int     `json:"category_registration_id1"`
	CategoryRegistrationID2 int     `json:"category_registration_id2"`
	Score                   *string `json:"score,omitempty"`
}

// Group — круговая группа регистраций внутри категории.
type Group struct {
	ID          int `json:"id"`
	GroupNumber int `json:"group_number"`
}

package models

// Player представляет игрока (пользователя платформы).
// Идентичность определяется только по ID.
type Player struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	MiddleName string         `json:"middle_name"`
	Gender     CategoryGender `json:"gender"`
	Document   string         `json:"document"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	ImageHash  *string        `json:"image_hash,omitempty"`

	// Заполняется порталом из imageHash, в бекенд не уходит.
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// FullName — имя в том виде, по которому работает поиск партнёра.
func (p Player) FullName() string {
	if p.MiddleName == "" {
		return p.Name
	}
	return p.Name + " " + p.MiddleName
}

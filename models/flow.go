package models

import "time"

// ShirtSize — размер формы, передаётся бекенду как есть.
type ShirtSize string

const (
	ShirtPP ShirtSize = "PP"
	ShirtP  ShirtSize = "P"
	ShirtM  ShirtSize = "M"
	ShirtG  ShirtSize = "G"
	ShirtGG ShirtSize = "GG"
)

// ValidShirtSize проверяет размер на границе HTTP; ядро дальше ему доверяет.
func ValidShirtSize(s ShirtSize) bool {
	switch s {
	case ShirtPP, ShirtP, ShirtM, ShirtG, ShirtGG:
		return true
	}
	return false
}

// SelectionPhase — состояние выбора категории внутри потока регистрации.
//
// Unselected → PairingPending → Selected; PairingPending → Unselected при отмене.
// Для Simples переход Unselected → Selected прямой.
type SelectionPhase string

const (
	PhaseUnselected     SelectionPhase = "unselected"
	PhasePairingPending SelectionPhase = "pairing_pending"
	PhaseSelected       SelectionPhase = "selected"
)

// CategorySelection — запись выбора по одной категории.
// Инвариант: для Duplas Phase == PhaseSelected достижимо только при
// заполненных PartnerID и PartnerShirtSize.
type CategorySelection struct {
	Phase            SelectionPhase `json:"phase"`
	PartnerID        *int           `json:"partner_id,omitempty"`
	PartnerShirtSize *ShirtSize     `json:"partner_shirt_size,omitempty"`
}

// SnapshotEntry — одна выбранная категория в финальном снимке потока.
type SnapshotEntry struct {
	Category         Category   `json:"category"`
	PartnerID        *int       `json:"partner_id,omitempty"`
	PartnerShirtSize *ShirtSize `json:"partner_shirt_size,omitempty"`
}

// Flow — транзиентное состояние одного потока регистрации.
// Живёт только в памяти портала, у потока один писатель (активная сессия).
type Flow struct {
	ID           string `json:"id"`
	PlayerID     int    `json:"player_id"`
	TournamentID int    `json:"tournament_id"`

	// Турнир на момент старта потока, для отображения.
	Tournament Tournament `json:"tournament"`

	// Подходящие категории в порядке каталога (стабильный фильтр).
	Simples []Category `json:"simples"`
	Duplas  []Category `json:"duplas"`

	Selections map[int]*CategorySelection `json:"selections"`

	// Открытый диалог подбора партнёра, nil если закрыт.
	PairingCategoryID *int   `json:"pairing_category_id,omitempty"`
	SearchQuery       string `json:"search_query,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EligibleCategory возвращает категорию потока по ID.
func (f *Flow) EligibleCategory(categoryID int) (Category, bool) {
	for _, c := range f.Simples {
		if c.ID == categoryID {
			return c, true
		}
	}
	for _, c := range f.Duplas {
		if c.ID == categoryID {
			return c, true
		}
	}
	return Category{}, false
}

// Selection возвращает запись выбора, создавая пустую при первом обращении.
func (f *Flow) Selection(categoryID int) *CategorySelection {
	if f.Selections == nil {
		f.Selections = make(map[int]*CategorySelection)
	}
	sel, ok := f.Selections[categoryID]
	if !ok {
		sel = &CategorySelection{Phase: PhaseUnselected}
		f.Selections[categoryID] = sel
	}
	return sel
}

// Snapshot возвращает выбранные категории в порядке каталога:
// сначала Simples, затем Duplas. Снимок — единственный вход оркестратора.
func (f *Flow) Snapshot() []SnapshotEntry {
	entries := make([]SnapshotEntry, 0)
	for _, c := range append(append([]Category{}, f.Simples...), f.Duplas...) {
		sel, ok := f.Selections[c.ID]
		if !ok || sel.Phase != PhaseSelected {
			continue
		}
		entries = append(entries, SnapshotEntry{
			Category:         c,
			PartnerID:        sel.PartnerID,
			PartnerShirtSize: sel.PartnerShirtSize,
		})
	}
	return entries
}

// Clone делает глубокую копию потока, чтобы хранилище не отдавало
// внутреннее состояние наружу.
func (f *Flow) Clone() *Flow {
	clone := *f
	clone.Simples = append([]Category{}, f.Simples...)
	clone.Duplas = append([]Category{}, f.Duplas...)
	clone.Selections = make(map[int]*CategorySelection, len(f.Selections))
	for id, sel := range f.Selections {
		selCopy := *sel
		if sel.PartnerID != nil {
			v := *sel.PartnerID
			selCopy.PartnerID = &v
		}
		if sel.PartnerShirtSize != nil {
			v := *sel.PartnerShirtSize
			selCopy.PartnerShirtSize = &v
		}
		clone.Selections[id] = &selCopy
	}
	if f.PairingCategoryID != nil {
		v := *f.PairingCategoryID
		clone.PairingCategoryID = &v
	}
	if f.Tournament.BannerKey != nil {
		v := *f.Tournament.BannerKey
		clone.Tournament.BannerKey = &v
	}
	if f.Tournament.BannerURL != nil {
		v := *f.Tournament.BannerURL
		clone.Tournament.BannerURL = &v
	}
	return &clone
}

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/beachpoint/portal/models"
	"github.com/beachpoint/portal/repositories"
)

// PlayerDirectory — пул кандидатов в партнёры у внешнего бекенда.
type PlayerDirectory interface {
	ListPlayers(ctx context.Context, token string) ([]models.Player, error)
}

// PairingService управляет подбором партнёра для категории Duplas:
// открытие диалога, поиск кандидатов, выбор, размер формы, подтверждение.
type PairingService struct {
	flows     repositories.FlowRepository
	directory PlayerDirectory
}

func NewPairingService(flows repositories.FlowRepository, directory PlayerDirectory) *PairingService {
	return &PairingService{
		flows:     flows,
		directory: directory,
	}
}

// FilterCandidates отбирает кандидатов в партнёры: сам игрок исключается
// всегда (включая пустой запрос), гендер кандидата должен подходить
// категории, запрос матчится без регистра как подстрока полного имени.
// Порядок входа сохраняется, повторный одинаковый запрос даёт тот же
// результат.
func FilterCandidates(players []models.Player, actingPlayerID int, category models.Category, query string) []models.Player {
	normalized := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Player, 0)
	for _, p := range players {
		if p.ID == actingPlayerID {
			continue
		}
		if !category.AcceptsGender(p.Gender) {
			continue
		}
		if normalized != "" && !strings.Contains(strings.ToLower(p.FullName()), normalized) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Open открывает диалог подбора для категории Duplas: запоминает категорию,
// сбрасывает запрос и возвращает полный список кандидатов.
func (s *PairingService) Open(ctx context.Context, token, flowID string, playerID, categoryID int) (*models.Flow, []models.Player, error) {
	flow, err := s.getFlow(ctx, flowID, playerID)
	if err != nil {
		return nil, nil, err
	}

	category, ok := flow.EligibleCategory(categoryID)
	if !ok {
		return nil, nil, ErrCategoryNotEligible
	}
	if category.GameType != models.GameDuplas {
		return nil, nil, ErrNotDuplasCategory
	}

	flow.PairingCategoryID = &categoryID
	flow.SearchQuery = ""
	if sel := flow.Selection(categoryID); sel.Phase == models.PhaseUnselected {
		sel.Phase = models.PhasePairingPending
	}
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, nil, err
	}

	candidates, err := s.candidates(ctx, token, flow, category, "")
	if err != nil {
		return nil, nil, err
	}
	return flow, candidates, nil
}

// Search перефильтровывает кандидатов по подстроке имени. Идемпотентна:
// одинаковые запросы дают одинаковый упорядоченный результат.
func (s *PairingService) Search(ctx context.Context, token, flowID string, playerID int, query string) ([]models.Player, error) {
	flow, category, err := s.openPairing(ctx, flowID, playerID)
	if err != nil {
		return nil, err
	}

	flow.SearchQuery = query
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return s.candidates(ctx, token, flow, category, query)
}

// ChoosePartner записывает партнёра для открытой категории. Категория при
// этом НЕ становится выбранной: до Confirm выбор не меняется.
func (s *PairingService) ChoosePartner(ctx context.Context, token, flowID string, playerID, partnerID int) (*models.Flow, error) {
	flow, category, err := s.openPairing(ctx, flowID, playerID)
	if err != nil {
		return nil, err
	}

	players, err := s.directory.ListPlayers(ctx, token)
	if err != nil {
		return nil, err
	}
	chosen := false
	for _, p := range FilterCandidates(players, flow.PlayerID, category, "") {
		if p.ID == partnerID {
			chosen = true
			break
		}
	}
	if !chosen {
		return nil, ErrPartnerNotCandidate
	}

	sel := flow.Selection(category.ID)
	sel.PartnerID = &partnerID
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// RemovePartner чистит партнёра и размер формы открытой категории.
func (s *PairingService) RemovePartner(ctx context.Context, flowID string, playerID int) (*models.Flow, error) {
	flow, category, err := s.openPairing(ctx, flowID, playerID)
	if err != nil {
		return nil, err
	}

	sel := flow.Selection(category.ID)
	sel.PartnerID = nil
	sel.PartnerShirtSize = nil
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// SetShirtSize записывает размер формы партнёра.
func (s *PairingService) SetShirtSize(ctx context.Context, flowID string, playerID int, size models.ShirtSize) (*models.Flow, error) {
	if !models.ValidShirtSize(size) {
		return nil, ErrInvalidShirtSize
	}

	flow, category, err := s.openPairing(ctx, flowID, playerID)
	if err != nil {
		return nil, err
	}

	sel := flow.Selection(category.ID)
	sel.PartnerShirtSize = &size
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// Confirm завершает подбор: успешен только при заполненных партнёре и
// размере, тогда категория переходит в Selected и диалог закрывается.
// При неполной паре состояние не меняется и возвращается ErrPairingIncomplete.
func (s *PairingService) Confirm(ctx context.Context, flowID string, playerID int) (*models.Flow, error) {
	flow, category, err := s.openPairing(ctx, flowID, playerID)
	if err != nil {
		return nil, err
	}

	sel := flow.Selection(category.ID)
	if sel.PartnerID == nil || sel.PartnerShirtSize == nil {
		return nil, ErrPairingIncomplete
	}

	sel.Phase = models.PhaseSelected
	flow.PairingCategoryID = nil
	flow.SearchQuery = ""
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// Cancel закрывает диалог без подтверждения: PairingPending → Unselected.
func (s *PairingService) Cancel(ctx context.Context, flowID string, playerID int) (*models.Flow, error) {
	flow, category, err := s.openPairing(ctx, flowID, playerID)
	if err != nil {
		return nil, err
	}

	sel := flow.Selection(category.ID)
	if sel.Phase == models.PhasePairingPending {
		sel.Phase = models.PhaseUnselected
		sel.PartnerID = nil
		sel.PartnerShirtSize = nil
	}
	flow.PairingCategoryID = nil
	flow.SearchQuery = ""
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// getFlow проверяет принадлежность потока: чужой поток неотличим от
// несуществующего.
func (s *PairingService) getFlow(ctx context.Context, flowID string, playerID int) (*models.Flow, error) {
	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		if errors.Is(err, repositories.ErrFlowNotFound) {
			return nil, ErrFlowNotFound
		}
		return nil, err
	}
	if flow.PlayerID != playerID {
		return nil, ErrFlowNotFound
	}
	return flow, nil
}

func (s *PairingService) openPairing(ctx context.Context, flowID string, playerID int) (*models.Flow, models.Category, error) {
	flow, err := s.getFlow(ctx, flowID, playerID)
	if err != nil {
		return nil, models.Category{}, err
	}
	if flow.PairingCategoryID == nil {
		return nil, models.Category{}, ErrPairingNotOpen
	}
	category, ok := flow.EligibleCategory(*flow.PairingCategoryID)
	if !ok {
		return nil, models.Category{}, ErrCategoryNotEligible
	}
	return flow, category, nil
}

func (s *PairingService) candidates(ctx context.Context, token string, flow *models.Flow, category models.Category, query string) ([]models.Player, error) {
	players, err := s.directory.ListPlayers(ctx, token)
	if err != nil {
		return nil, err
	}
	return FilterCandidates(players, flow.PlayerID, category, query), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/beachpoint/portal/models"
	"github.com/beachpoint/portal/repositories"
	"github.com/beachpoint/portal/storage"
)

// TournamentCatalog — турнир и его каталог категорий у внешнего бекенда.
type TournamentCatalog interface {
	GetTournament(ctx context.Context, token string, tournamentID int) (*models.Tournament, error)
	ListCategories(ctx context.Context, token string, tournamentID int) ([]models.Category, error)
}

// FlowService управляет жизненным циклом потока регистрации: создание с
// фильтрацией каталога, выбор категорий, снимок и сброс.
type FlowService struct {
	flows       repositories.FlowRepository
	catalog     TournamentCatalog
	eligibility *EligibilityService
	images      storage.ImageURLResolver
	logger      *slog.Logger
}

func NewFlowService(
	flows repositories.FlowRepository,
	catalog TournamentCatalog,
	eligibility *EligibilityService,
	images storage.ImageURLResolver,
	logger *slog.Logger,
) *FlowService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlowService{
		flows:       flows,
		catalog:     catalog,
		eligibility: eligibility,
		images:      images,
		logger:      logger,
	}
}

// Start создаёт пустой поток: проверяет, что турнир принимает регистрации,
// забирает каталог категорий и оставляет только доступные игроку, в порядке
// каталога.
func (s *FlowService) Start(ctx context.Context, token string, playerID int, gender models.CategoryGender, tournamentID int) (*models.Flow, error) {
	tournament, err := s.catalog.GetTournament(ctx, token, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tournament: %w", err)
	}
	if !tournament.OpenForRegistration() {
		return nil, ErrTournamentNotOpen
	}
	s.resolveBanner(ctx, tournament)

	categories, err := s.catalog.ListCategories(ctx, token, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tournament categories: %w", err)
	}

	simples, duplas := s.eligibility.EligibleCategories(categories, gender)

	flow := &models.Flow{
		ID:           uuid.NewString(),
		PlayerID:     playerID,
		TournamentID: tournamentID,
		Tournament:   *tournament,
		Simples:      simples,
		Duplas:       duplas,
		Selections:   make(map[int]*models.CategorySelection),
		CreatedAt:    time.Now(),
	}

	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to save registration flow: %w", err)
	}
	return flow, nil
}

// Get возвращает поток по ID. Чужой поток неотличим от несуществующего:
// идентификатор потока не является секретом.
func (s *FlowService) Get(ctx context.Context, flowID string, playerID int) (*models.Flow, error) {
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

// resolveBanner подставляет отображаемую ссылку на баннер, если хранилище
// изображений настроено. Ошибка резолва сетку регистрации не валит.
func (s *FlowService) resolveBanner(ctx context.Context, tournament *models.Tournament) {
	if s.images == nil || tournament.BannerKey == nil || *tournament.BannerKey == "" {
		return
	}
	u, err := s.images.ResolveURL(ctx, *tournament.BannerKey)
	if err != nil {
		s.logger.Warn("failed to resolve tournament banner",
			slog.Int("tournament_id", tournament.ID),
			slog.Any("error", err))
		return
	}
	tournament.BannerURL = &u
}

// Select обрабатывает запрос выбора/снятия категории.
//
// Для Simples флаг ставится напрямую. Для Duplas переход в Selected возможен
// только при уже подтверждённой паре; иначе категория переводится в
// PairingPending и возвращается ErrPairingRequired — сигнал открыть диалог
// подбора партнёра, а не прямой флип флага.
func (s *FlowService) Select(ctx context.Context, flowID string, playerID, categoryID int, selected bool) (*models.Flow, error) {
	flow, err := s.Get(ctx, flowID, playerID)
	if err != nil {
		return nil, err
	}

	category, ok := flow.EligibleCategory(categoryID)
	if !ok {
		return nil, ErrCategoryNotEligible
	}

	sel := flow.Selection(categoryID)

	if !selected {
		// Снятие выбора всегда разрешено и чистит поля пары.
		sel.Phase = models.PhaseUnselected
		sel.PartnerID = nil
		sel.PartnerShirtSize = nil
		if flow.PairingCategoryID != nil && *flow.PairingCategoryID == categoryID {
			flow.PairingCategoryID = nil
			flow.SearchQuery = ""
		}
		if err := s.flows.Save(ctx, flow); err != nil {
			return nil, err
		}
		return flow, nil
	}

	if category.GameType != models.GameDuplas {
		sel.Phase = models.PhaseSelected
		if err := s.flows.Save(ctx, flow); err != nil {
			return nil, err
		}
		return flow, nil
	}

	// Duplas: инвариант полноты пары.
	if sel.PartnerID != nil && sel.PartnerShirtSize != nil {
		sel.Phase = models.PhaseSelected
		if err := s.flows.Save(ctx, flow); err != nil {
			return nil, err
		}
		return flow, nil
	}

	sel.Phase = models.PhasePairingPending
	flow.PairingCategoryID = &categoryID
	flow.SearchQuery = ""
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, ErrPairingRequired
}

// Abandon сбрасывает поток без каких-либо сетевых вызовов.
func (s *FlowService) Abandon(ctx context.Context, flowID string, playerID int) error {
	if _, err := s.Get(ctx, flowID, playerID); err != nil {
		return err
	}
	if err := s.flows.Delete(ctx, flowID); err != nil {
		if errors.Is(err, repositories.ErrFlowNotFound) {
			return ErrFlowNotFound
		}
		return err
	}
	return nil
}

// RunSweeper выметает простаивающие потоки, пока контекст жив.
func (s *FlowService) RunSweeper(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if swept := s.flows.DeleteIdleSince(ctx, time.Now().Add(-ttl)); swept > 0 {
				s.logger.Info("swept idle registration flows", slog.Int("count", swept))
			}
		}
	}
}

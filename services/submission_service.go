package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/beachpoint/portal/backend"
	"github.com/beachpoint/portal/models"
	"github.com/beachpoint/portal/mq"
	"github.com/beachpoint/portal/repositories"
)

// RegistrationBackend — вызовы бекенда, которыми оркестратор выполняет
// отправку: одна регистрация на турнир, затем по одной на категорию.
type RegistrationBackend interface {
	CreateTournamentRegistration(ctx context.Context, token string, in models.TournamentRegistrationInput) error
	CreateCategoryRegistration(ctx context.Context, token string, in models.CategoryRegistrationInput) error
}

// SubmitInput — личность действующего игрока на момент отправки.
type SubmitInput struct {
	Token     string
	PlayerID  int
	Name      string
	Email     string
	CPF       string
	Phone     string
	Gender    models.CategoryGender
	ShirtSize models.ShirtSize
}

// SubmissionService — оркестратор отправки: превращает снимок потока в
// последовательность вызовов бекенда и собирает поитемные исходы.
type SubmissionService struct {
	backend   RegistrationBackend
	journal   repositories.SubmissionJournal
	flows     repositories.FlowRepository
	publisher *mq.Publisher
	logger    *slog.Logger
}

func NewSubmissionService(
	registrationBackend RegistrationBackend,
	journal repositories.SubmissionJournal,
	flows repositories.FlowRepository,
	publisher *mq.Publisher,
	logger *slog.Logger,
) *SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		backend:   registrationBackend,
		journal:   journal,
		flows:     flows,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit выполняет отправку потока.
//
// Последовательность строгая: регистрация на турнир обязана завершиться
// успехом до первого вызова по категории. Вызовы шага 2 независимы: провал
// одного не откатывает шаг 1 и не обрывает остальные — собирается полный
// набор исходов. Категории, уже записанные журналом как успешные для этой
// пары (игрок, турнир), пропускаются, поэтому повторная отправка после
// частичного провала уходит только по провалившемуся подмножеству.
//
// Начатая отправка не отменяется: шаг 2 идёт под context.WithoutCancel,
// чтобы обрыв соединения не оставил регистрацию на турнир без единой
// категории.
func (s *SubmissionService) Submit(ctx context.Context, flowID string, in SubmitInput) (*models.SubmissionReport, error) {
	if !models.ValidShirtSize(in.ShirtSize) {
		return nil, ErrInvalidShirtSize
	}

	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		if errors.Is(err, repositories.ErrFlowNotFound) {
			return nil, ErrFlowNotFound
		}
		return nil, err
	}

	// Чужой поток неотличим от несуществующего.
	if flow.PlayerID != in.PlayerID {
		return nil, ErrFlowNotFound
	}

	snapshot := flow.Snapshot()
	if len(snapshot) == 0 {
		// Валидация до любого сетевого вызова.
		return nil, ErrNoCategorySelected
	}

	previous, err := s.journal.ListOutcomes(ctx, flow.PlayerID, flow.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission journal: %w", err)
	}
	succeeded := make(map[int]bool)
	for _, o := range previous {
		if o.Status == models.OutcomeSucceeded {
			succeeded[o.CategoryID] = true
		}
	}

	// Шаг 1 нужен ровно один раз на пару (игрок, турнир). Строки журнала
	// пишутся только после успешной регистрации на турнир, поэтому любая
	// прошлая запись — включая сплошные провалы шага 2 — означает, что шаг 1
	// уже прошёл и повторять его нельзя.
	if len(previous) == 0 {
		err := s.backend.CreateTournamentRegistration(ctx, in.Token, models.TournamentRegistrationInput{
			UserID:       in.PlayerID,
			Name:         in.Name,
			Email:        in.Email,
			CPF:          in.CPF,
			Phone:        in.Phone,
			ShirtSize:    string(in.ShirtSize),
			Gender:       string(in.Gender),
			TournamentID: flow.TournamentID,
		})
		if err != nil {
			s.logger.Warn("tournament registration failed",
				slog.Int("player_id", flow.PlayerID),
				slog.Int("tournament_id", flow.TournamentID),
				slog.Any("error", err))
			return nil, &TournamentRegistrationError{Message: backendMessage(err), Err: err}
		}
	}

	// Начатую отправку не бросаем на середине.
	detached := context.WithoutCancel(ctx)

	report := &models.SubmissionReport{
		PlayerID:     flow.PlayerID,
		TournamentID: flow.TournamentID,
	}
	for _, entry := range snapshot {
		if succeeded[entry.Category.ID] {
			report.Outcomes = append(report.Outcomes, models.CategoryOutcome{
				CategoryID:   entry.Category.ID,
				CategoryName: entry.Category.Name,
				Status:       models.OutcomeSucceeded,
				RecordedAt:   time.Now(),
			})
			continue
		}

		var partnerID *int
		if entry.PartnerID != nil {
			v := *entry.PartnerID
			partnerID = &v
		}
		callErr := s.backend.CreateCategoryRegistration(detached, in.Token, models.CategoryRegistrationInput{
			TournamentID: flow.TournamentID,
			CategoryID:   entry.Category.ID,
			Player1ID:    flow.PlayerID,
			Player2ID:    partnerID,
		})

		outcome := models.CategoryOutcome{
			CategoryID:   entry.Category.ID,
			CategoryName: entry.Category.Name,
			Status:       models.OutcomeSucceeded,
			RecordedAt:   time.Now(),
		}
		if callErr != nil {
			outcome.Status = models.OutcomeFailed
			outcome.Message = backendMessage(callErr)
			s.logger.Warn("category registration failed",
				slog.Int("category_id", entry.Category.ID),
				slog.Any("error", callErr))
		}
		report.Outcomes = append(report.Outcomes, outcome)

		// Журнал best-effort: его сбой не должен ронять отправку.
		if jErr := s.journal.RecordOutcome(detached, flow.PlayerID, flow.TournamentID, outcome); jErr != nil {
			s.logger.Error("failed to journal submission outcome",
				slog.Int("category_id", entry.Category.ID),
				slog.Any("error", jErr))
		}
	}

	failed := report.Failed()
	s.publishSubmitted(detached, report, len(failed) > 0)

	if len(failed) > 0 {
		// Поток остаётся жить для повторной отправки провалившегося
		// подмножества.
		return report, &PartialRegistrationError{Report: *report}
	}

	if err := s.flows.Delete(detached, flowID); err != nil && !errors.Is(err, repositories.ErrFlowNotFound) {
		s.logger.Error("failed to discard submitted flow", slog.Any("error", err))
	}
	return report, nil
}

// Outcomes возвращает журнал исходов пары (игрок, турнир).
func (s *SubmissionService) Outcomes(ctx context.Context, playerID, tournamentID int) ([]models.CategoryOutcome, error) {
	return s.journal.ListOutcomes(ctx, playerID, tournamentID)
}

func (s *SubmissionService) publishSubmitted(ctx context.Context, report *models.SubmissionReport, partial bool) {
	err := s.publisher.PublishRegistrationSubmitted(ctx, mq.RegistrationSubmitted{
		PlayerID:     report.PlayerID,
		TournamentID: report.TournamentID,
		Outcomes:     report.Outcomes,
		Partial:      partial,
	})
	if err != nil {
		s.logger.Error("failed to publish registration event", slog.Any("error", err))
	}
}

// backendMessage достаёт сообщение бекенда как есть, если оно было.
func backendMessage(err error) string {
	var be *backend.Error
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

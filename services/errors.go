package services

import (
	"errors"
	"fmt"

	"github.com/beachpoint/portal/models"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Поток регистрации не найден, принадлежит другому игроку или уже
	// вычищен по TTL. Эти случаи снаружи не различаются.
	ErrFlowNotFound = errors.New("registration flow not found")

	// Турнир не принимает регистрации (concluido/cancelado).
	ErrTournamentNotOpen = errors.New("tournament is not open for registration")

	// Ошибки валидации выбора: разрешаются локально, до сети не доходят.
	ErrNoCategorySelected  = errors.New("no category selected for submission")
	ErrPairingIncomplete   = errors.New("partner and shirt size must both be set before confirming")
	ErrPairingRequired     = errors.New("doubles category requires a confirmed partner before selection")
	ErrPairingNotOpen      = errors.New("no doubles category is open for pairing")
	ErrCategoryNotEligible = errors.New("category is not in the player's eligible set")
	ErrNotDuplasCategory   = errors.New("pairing is only available for doubles categories")
	ErrInvalidShirtSize    = errors.New("shirt size must be one of PP, P, M, G, GG")
	ErrPartnerNotCandidate = errors.New("chosen partner is not a compatible candidate")
)

// TournamentRegistrationError — провал шага 1: регистрация на турнир не
// прошла, ни один вызов шага 2 не выполнялся.
type TournamentRegistrationError struct {
	Message string // сообщение бекенда как есть, если было
	Err     error
}

func (e *TournamentRegistrationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tournament registration failed: %s", e.Message)
	}
	return "tournament registration failed"
}

func (e *TournamentRegistrationError) Unwrap() error { return e.Err }

// PartialRegistrationError — провал части вызовов шага 2. Шаг 1 при этом
// успешен и не откатывается: игрок записан на турнир.
type PartialRegistrationError struct {
	Report models.SubmissionReport
}

func (e *PartialRegistrationError) Error() string {
	return fmt.Sprintf("registration failed for %d of %d categories",
		len(e.Report.Failed()), len(e.Report.Outcomes))
}

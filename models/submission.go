package models

import "time"

// OutcomeStatus — результат одной регистрации в категорию.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
)

// CategoryOutcome — исход одного вызова шага 2 оркестратора.
type CategoryOutcome struct {
	CategoryID   int           `json:"category_id"`
	CategoryName string        `json:"category_name"`
	Status       OutcomeStatus `json:"status"`
	Message      string        `json:"message,omitempty"`
	RecordedAt   time.Time     `json:"recorded_at"`
}

// SubmissionReport — полный набор исходов одной отправки.
// Шаг 1 к этому моменту уже успешен: игрок записан на турнир независимо
// от исходов категорий.
type SubmissionReport struct {
	PlayerID     int               `json:"player_id"`
	TournamentID int               `json:"tournament_id"`
	Outcomes     []CategoryOutcome `json:"outcomes"`
}

// Failed возвращает исходы категорий, которые не прошли.
func (r SubmissionReport) Failed() []CategoryOutcome {
	out := make([]CategoryOutcome, 0)
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			out = append(out, o)
		}
	}
	return out
}

// Succeeded возвращает исходы категорий, которые прошли.
func (r SubmissionReport) Succeeded() []CategoryOutcome {
	out := make([]CategoryOutcome, 0)
	for _, o := range r.Outcomes {
		if o.Status == OutcomeSucceeded {
			out = append(out, o)
		}
	}
	return out
}

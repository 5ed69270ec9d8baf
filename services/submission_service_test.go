package services

import (
	"context"
	"errors"
	"testing"

	"github.com/beachpoint/portal/backend"
	"github.com/beachpoint/portal/models"
	"github.com/beachpoint/portal/repositories"
)

type fakeRegistrationBackend struct {
	tournamentCalls int
	tournamentErr   error

	categoryCalls []int // category IDs in call order
	categoryErrs  map[int]error
}

func (f *fakeRegistrationBackend) CreateTournamentRegistration(_ context.Context, _ string, _ models.TournamentRegistrationInput) error {
	f.tournamentCalls++
	return f.tournamentErr
}

func (f *fakeRegistrationBackend) CreateCategoryRegistration(_ context.Context, _ string, in models.CategoryRegistrationInput) error {
	f.categoryCalls = append(f.categoryCalls, in.CategoryID)
	return f.categoryErrs[in.CategoryID]
}

type fakeJournal struct {
	outcomes []models.CategoryOutcome
}

func (f *fakeJournal) RecordOutcome(_ context.Context, _, _ int, outcome models.CategoryOutcome) error {
	for i, o := range f.outcomes {
		if o.CategoryID == outcome.CategoryID {
			f.outcomes[i] = outcome
			return nil
		}
	}
	f.outcomes = append(f.outcomes, outcome)
	return nil
}

func (f *fakeJournal) ListOutcomes(_ context.Context, _, _ int) ([]models.CategoryOutcome, error) {
	return f.outcomes, nil
}

// submissionFixture: поток с тремя выбранными категориями (одна Duplas).
func submissionFixture(t *testing.T) (repositories.FlowRepository, *models.Flow) {
	t.Helper()

	partner := 5
	size := models.ShirtM
	flow := &models.Flow{
		ID:           "flow-1",
		PlayerID:     2,
		TournamentID: 7,
		Simples: []models.Category{
			{ID: 10, TournamentID: 7, Name: "Simples Masculino", GameType: models.GameSimples},
			{ID: 11, TournamentID: 7, Name: "Simples Livre", GameType: models.GameSimples},
		},
		Duplas: []models.Category{
			{ID: 12, TournamentID: 7, Name: "Duplas Mista", GameType: models.GameDuplas},
		},
		Selections: map[int]*models.CategorySelection{
			10: {Phase: models.PhaseSelected},
			11: {Phase: models.PhaseSelected},
			12: {Phase: models.PhaseSelected, PartnerID: &partner, PartnerShirtSize: &size},
		},
	}

	flows := repositories.NewMemoryFlowRepository()
	if err := flows.Save(context.Background(), flow); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return flows, flow
}

func submitInput() SubmitInput {
	return SubmitInput{
		Token:     "token",
		PlayerID:  2,
		Name:      "Bruno Lima",
		Email:     "bruno@example.com",
		CPF:       "111.222.333-44",
		Phone:     "+55 11 91234-5678",
		Gender:    models.GenderMasculino,
		ShirtSize: models.ShirtG,
	}
}

func TestSubmitEmptySnapshotFailsBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	flows := repositories.NewMemoryFlowRepository()
	if err := flows.Save(ctx, &models.Flow{ID: "empty", PlayerID: 2, TournamentID: 7}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	be := &fakeRegistrationBackend{}
	svc := NewSubmissionService(be, &fakeJournal{}, flows, nil, nil)

	_, err := svc.Submit(ctx, "empty", submitInput())
	if !errors.Is(err, ErrNoCategorySelected) {
		t.Fatalf("Submit err = %v, want ErrNoCategorySelected", err)
	}
	if be.tournamentCalls != 0 || len(be.categoryCalls) != 0 {
		t.Errorf("backend was called (%d tournament, %d category), want zero calls",
			be.tournamentCalls, len(be.categoryCalls))
	}
}

func TestSubmitInvalidShirtSize(t *testing.T) {
	flows, flow := submissionFixture(t)
	be := &fakeRegistrationBackend{}
	svc := NewSubmissionService(be, &fakeJournal{}, flows, nil, nil)

	in := submitInput()
	in.ShirtSize = "XL"
	if _, err := svc.Submit(context.Background(), flow.ID, in); !errors.Is(err, ErrInvalidShirtSize) {
		t.Fatalf("Submit err = %v, want ErrInvalidShirtSize", err)
	}
	if be.tournamentCalls != 0 {
		t.Errorf("tournament calls = %d, want 0", be.tournamentCalls)
	}
}

func TestSubmitTournamentFailureStopsStepTwo(t *testing.T) {
	flows, flow := submissionFixture(t)
	be := &fakeRegistrationBackend{
		tournamentErr: &backend.Error{StatusCode: 409, Message: "CPF já cadastrado"},
	}
	svc := NewSubmissionService(be, &fakeJournal{}, flows, nil, nil)

	_, err := svc.Submit(context.Background(), flow.ID, submitInput())
	var tre *TournamentRegistrationError
	if !errors.As(err, &tre) {
		t.Fatalf("Submit err = %v, want TournamentRegistrationError", err)
	}
	if tre.Message != "CPF já cadastrado" {
		t.Errorf("message = %q, want backend message verbatim", tre.Message)
	}
	if len(be.categoryCalls) != 0 {
		t.Errorf("category calls = %v, want none after step 1 failure", be.categoryCalls)
	}
	// Поток не тронут.
	if _, err := flows.Get(context.Background(), flow.ID); err != nil {
		t.Errorf("flow should survive step 1 failure: %v", err)
	}
}

func TestSubmitFullSuccess(t *testing.T) {
	ctx := context.Background()
	flows, flow := submissionFixture(t)
	be := &fakeRegistrationBackend{}
	svc := NewSubmissionService(be, &fakeJournal{}, flows, nil, nil)

	report, err := svc.Submit(ctx, flow.ID, submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if be.tournamentCalls != 1 {
		t.Errorf("tournament calls = %d, want 1", be.tournamentCalls)
	}
	// Порядок каталога: Simples, затем Duplas.
	want := []int{10, 11, 12}
	if len(be.categoryCalls) != len(want) {
		t.Fatalf("category calls = %v, want %v", be.categoryCalls, want)
	}
	for i, id := range want {
		if be.categoryCalls[i] != id {
			t.Errorf("category call %d = %d, want %d", i, be.categoryCalls[i], id)
		}
	}
	if len(report.Failed()) != 0 || len(report.Succeeded()) != 3 {
		t.Errorf("report = %+v, want 3 successes", report.Outcomes)
	}
	// Успешная отправка выбрасывает поток.
	if _, err := flows.Get(ctx, flow.ID); !errors.Is(err, repositories.ErrFlowNotFound) {
		t.Errorf("Get after submit err = %v, want ErrFlowNotFound", err)
	}
}

func TestSubmitPartialFailureDoesNotShortCircuit(t *testing.T) {
	ctx := context.Background()
	flows, flow := submissionFixture(t)
	be := &fakeRegistrationBackend{
		categoryErrs: map[int]error{
			11: &backend.Error{StatusCode: 422, Message: "Categoria lotada"},
		},
	}
	svc := NewSubmissionService(be, &fakeJournal{}, flows, nil, nil)

	report, err := svc.Submit(ctx, flow.ID, submitInput())
	var pre *PartialRegistrationError
	if !errors.As(err, &pre) {
		t.Fatalf("Submit err = %v, want PartialRegistrationError", err)
	}
	// Все три вызова выполнены, провал посередине ничего не оборвал.
	if len(be.categoryCalls) != 3 {
		t.Errorf("category calls = %v, want all 3", be.categoryCalls)
	}
	if len(report.Failed()) != 1 || len(report.Succeeded()) != 2 {
		t.Errorf("report = %+v, want 1 failure and 2 successes", report.Outcomes)
	}
	if got := report.Failed()[0]; got.CategoryID != 11 || got.Message != "Categoria lotada" {
		t.Errorf("failed outcome = %+v, want category 11 with backend message", got)
	}
	// Поток остаётся для повторной отправки.
	if _, err := flows.Get(ctx, flow.ID); err != nil {
		t.Errorf("flow should survive partial failure: %v", err)
	}
}

func TestSubmitRejectsForeignFlow(t *testing.T) {
	flows, flow := submissionFixture(t)
	be := &fakeRegistrationBackend{}
	svc := NewSubmissionService(be, &fakeJournal{}, flows, nil, nil)

	// Поток принадлежит игроку 2, отправляет игрок 42.
	in := submitInput()
	in.PlayerID = 42
	if _, err := svc.Submit(context.Background(), flow.ID, in); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("Submit foreign flow err = %v, want ErrFlowNotFound", err)
	}
	if be.tournamentCalls != 0 || len(be.categoryCalls) != 0 {
		t.Errorf("backend was called (%d tournament, %d category), want zero calls",
			be.tournamentCalls, len(be.categoryCalls))
	}
}

func TestSubmitRetrySkipsStepOneAfterTotalCategoryFailure(t *testing.T) {
	ctx := context.Background()
	flows, flow := submissionFixture(t)
	journal := &fakeJournal{}
	be := &fakeRegistrationBackend{
		// Шаг 1 проходит, все три категории — нет.
		categoryErrs: map[int]error{
			10: &backend.Error{StatusCode: 500, Message: "indisponível"},
			11: &backend.Error{StatusCode: 500, Message: "indisponível"},
			12: &backend.Error{StatusCode: 500, Message: "indisponível"},
		},
	}
	svc := NewSubmissionService(be, journal, flows, nil, nil)

	if _, err := svc.Submit(ctx, flow.ID, submitInput()); err == nil {
		t.Fatal("first Submit should report partial failure")
	}

	be.categoryErrs = nil
	be.categoryCalls = nil
	report, err := svc.Submit(ctx, flow.ID, submitInput())
	if err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	// Ни одна категория не прошла, но журнал не пуст — значит, регистрация
	// на турнир уже состоялась и дублировать её нельзя.
	if be.tournamentCalls != 1 {
		t.Errorf("tournament registration issued %d times across both submits, want 1", be.tournamentCalls)
	}
	if len(be.categoryCalls) != 3 {
		t.Errorf("retry category calls = %v, want all 3", be.categoryCalls)
	}
	if len(report.Succeeded()) != 3 {
		t.Errorf("retry report = %+v, want 3 successes", report.Outcomes)
	}
}

func TestSubmitRetryOnlyFailedSubset(t *testing.T) {
	ctx := context.Background()
	flows, flow := submissionFixture(t)
	journal := &fakeJournal{}
	be := &fakeRegistrationBackend{
		categoryErrs: map[int]error{
			11: &backend.Error{StatusCode: 422, Message: "Categoria lotada"},
		},
	}
	svc := NewSubmissionService(be, journal, flows, nil, nil)

	if _, err := svc.Submit(ctx, flow.ID, submitInput()); err == nil {
		t.Fatal("first Submit should report partial failure")
	}

	// Повтор: категория открылась.
	be.categoryErrs = nil
	be.categoryCalls = nil
	report, err := svc.Submit(ctx, flow.ID, submitInput())
	if err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	// Шаг 1 уже прошёл — второй раз не вызывается.
	if be.tournamentCalls != 1 {
		t.Errorf("tournament calls = %d, want 1 across both submits", be.tournamentCalls)
	}
	// Уходит только провалившееся подмножество.
	if len(be.categoryCalls) != 1 || be.categoryCalls[0] != 11 {
		t.Errorf("retry category calls = %v, want only category 11", be.categoryCalls)
	}
	// Отчёт повтора всё равно полный: пропущенные категории отражены успехами.
	if len(report.Succeeded()) != 3 {
		t.Errorf("retry report = %+v, want 3 successes", report.Outcomes)
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/beachpoint/portal/middleware"
	"github.com/beachpoint/portal/models"
	"github.com/beachpoint/portal/services"
	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(ss *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

// Submit godoc
// @Summary Отправить регистрацию потока
// @Tags submissions
// @Description Последовательно: одна регистрация на турнир, затем по одной на каждую выбранную категорию. Частичный провал не откатывает шаг 1; ответ 207 перечисляет провалившиеся и прошедшие категории. Повторная отправка уходит только по провалившемуся подмножеству.
// @Accept json
// @Produce json
// @Param flowID path string true "Flow ID"
// @Param body body object true "shirt_size"
// @Success 200 {object} map[string]interface{} "Все категории зарегистрированы"
// @Failure 400 {object} map[string]string "Ни одной выбранной категории"
// @Failure 404 {object} map[string]string "Поток не найден"
// @Failure 502 {object} map[string]string "Регистрация на турнир не прошла, шаг 2 не выполнялся"
// @Security BearerAuth
// @Router /flows/{flowID}/submit [post]
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		ShirtSize models.ShirtSize `json:"shirt_size"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.submissionService.Submit(r.Context(), chi.URLParam(r, "flowID"), services.SubmitInput{
		Token:     principal.Token,
		PlayerID:  principal.UserID,
		Name:      principal.Name,
		Email:     principal.Email,
		CPF:       principal.CPF,
		Phone:     principal.Phone,
		Gender:    principal.Gender,
		ShirtSize: input.ShirtSize,
	})
	if err != nil {
		var partial *services.PartialRegistrationError
		if errors.As(err, &partial) {
			// 207: шаг 1 прошёл, часть категорий — нет. Зовущий решает,
			// что ретраить.
			writeJSON(w, http.StatusMultiStatus, jsonResponse{
				"report":    partial.Report,
				"failed":    partial.Report.Failed(),
				"succeeded": partial.Report.Succeeded(),
			}, nil)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Outcomes godoc
// @Summary Журнал исходов отправки по турниру
// @Tags submissions
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/submission-outcomes [get]
func (h *SubmissionHandler) Outcomes(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcomes, err := h.submissionService.Outcomes(r.Context(), principal.UserID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"outcomes": outcomes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

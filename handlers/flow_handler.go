package handlers

import (
	"errors"
	"net/http"

	"github.com/beachpoint/portal/middleware"
	"github.com/beachpoint/portal/services"
	"github.com/go-chi/chi/v5"
)

type FlowHandler struct {
	flowService *services.FlowService
}

func NewFlowHandler(fs *services.FlowService) *FlowHandler {
	return &FlowHandler{flowService: fs}
}

// Start godoc
// @Summary Начать поток регистрации на турнир
// @Tags flows
// @Description Создаёт поток: забирает каталог категорий и оставляет доступные игроку, разбитые на Simples и Duplas. Пустые списки — валидное состояние "нет доступных категорий".
// @Accept json
// @Produce json
// @Param body body object true "tournament_id"
// @Success 201 {object} map[string]interface{} "Поток создан"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 409 {object} map[string]string "Турнир не принимает регистрации"
// @Security BearerAuth
// @Router /flows [post]
func (h *FlowHandler) Start(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		TournamentID int `json:"tournament_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TournamentID <= 0 {
		badRequestResponse(w, r, errors.New("invalid tournament_id in request body"))
		return
	}

	flow, err := h.flowService.Start(r.Context(), principal.Token, principal.UserID, principal.Gender, input.TournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"flow": flow}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Текущее состояние потока регистрации
// @Tags flows
// @Produce json
// @Param flowID path string true "Flow ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Поток не найден"
// @Security BearerAuth
// @Router /flows/{flowID} [get]
func (h *FlowHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	flow, err := h.flowService.Get(r.Context(), chi.URLParam(r, "flowID"), principal.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": flow, "snapshot": flow.Snapshot()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Select godoc
// @Summary Выбрать или снять категорию в потоке
// @Tags flows
// @Description Для Simples флаг ставится напрямую. Для Duplas без подтверждённой пары категория переводится в pairing_pending и ответ 409 указывает открыть диалог подбора партнёра.
// @Accept json
// @Produce json
// @Param flowID path string true "Flow ID"
// @Param body body object true "category_id, selected"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Категория вне доступного набора"
// @Failure 404 {object} map[string]string "Поток не найден"
// @Failure 409 {object} map[string]interface{} "Требуется подбор партнёра"
// @Security BearerAuth
// @Router /flows/{flowID}/selections [post]
func (h *FlowHandler) Select(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		CategoryID int  `json:"category_id"`
		Selected   bool `json:"selected"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.CategoryID <= 0 {
		badRequestResponse(w, r, errors.New("invalid category_id in request body"))
		return
	}

	flow, err := h.flowService.Select(r.Context(), chi.URLParam(r, "flowID"), principal.UserID, input.CategoryID, input.Selected)
	if err != nil {
		if errors.Is(err, services.ErrPairingRequired) {
			// Сам выбор Duplas и есть триггер открытия диалога подбора.
			writeJSON(w, http.StatusConflict, jsonResponse{
				"flow":             flow,
				"pairing_required": true,
				"category_id":      input.CategoryID,
			}, nil)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": flow}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Abandon godoc
// @Summary Бросить поток регистрации
// @Tags flows
// @Description Сбрасывает состояние потока. Сетевых вызовов не делается.
// @Param flowID path string true "Flow ID"
// @Success 204 "Поток сброшен"
// @Failure 404 {object} map[string]string "Поток не найден"
// @Security BearerAuth
// @Router /flows/{flowID} [delete]
func (h *FlowHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.flowService.Abandon(r.Context(), chi.URLParam(r, "flowID"), principal.UserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

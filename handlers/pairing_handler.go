package handlers

import (
	"errors"
	"net/http"

	"github.com/beachpoint/portal/middleware"
	"github.com/beachpoint/portal/models"
	"github.com/beachpoint/portal/services"
	"github.com/go-chi/chi/v5"
)

type PairingHandler struct {
	pairingService *services.PairingService
}

func NewPairingHandler(ps *services.PairingService) *PairingHandler {
	return &PairingHandler{pairingService: ps}
}

// Open godoc
// @Summary Открыть диалог подбора партнёра для категории Duplas
// @Tags pairing
// @Description Возвращает кандидатов: все игроки кроме самого, с подходящим гендером.
// @Accept json
// @Produce json
// @Param flowID path string true "Flow ID"
// @Param body body object true "category_id"
// @Success 200 {object} map[string]interface{} "Кандидаты в партнёры"
// @Failure 400 {object} map[string]string "Категория не Duplas или вне набора"
// @Failure 404 {object} map[string]string "Поток не найден"
// @Security BearerAuth
// @Router /flows/{flowID}/pairing/open [post]
func (h *PairingHandler) Open(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		CategoryID int `json:"category_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.CategoryID <= 0 {
		badRequestResponse(w, r, errors.New("invalid category_id in request body"))
		return
	}

	flow, candidates, err := h.pairingService.Open(r.Context(), principal.Token, chi.URLParam(r, "flowID"), principal.UserID, input.CategoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": flow, "candidates": candidates}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Search godoc
// @Summary Поиск кандидатов в партнёры по имени
// @Tags pairing
// @Description Подстрочный поиск без учёта регистра по полному имени. Повторный одинаковый запрос даёт тот же результат.
// @Produce json
// @Param flowID path string true "Flow ID"
// @Param query query string false "Подстрока имени"
// @Success 200 {object} map[string]interface{} "Кандидаты"
// @Failure 404 {object} map[string]string "Поток не найден"
// @Failure 409 {object} map[string]string "Диалог подбора не открыт"
// @Security BearerAuth
// @Router /flows/{flowID}/pairing/candidates [get]
func (h *PairingHandler) Search(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	query := r.URL.Query().Get("query")
	candidates, err := h.pairingService.Search(r.Context(), principal.Token, chi.URLParam(r, "flowID"), principal.UserID, query)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"candidates": candidates}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Choose godoc
// @Summary Выбрать партнёра для открытой категории
// @Tags pairing
// @Description Записывает партнёра, но НЕ выбирает категорию: выбор происходит только при подтверждении.
// @Accept json
// @Produce json
// @Param flowID path string true "Flow ID"
// @Param body body object true "player_id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Поток не найден"
// @Failure 422 {object} map[string]string "Игрок не подходит в кандидаты"
// @Security BearerAuth
// @Router /flows/{flowID}/pairing/partner [post]
func (h *PairingHandler) Choose(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		PlayerID int `json:"player_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PlayerID <= 0 {
		badRequestResponse(w, r, errors.New("invalid player_id in request body"))
		return
	}

	flow, err := h.pairingService.ChoosePartner(r.Context(), principal.Token, chi.URLParam(r, "flowID"), principal.UserID, input.PlayerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": flow}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Remove godoc
// @Summary Убрать выбранного партнёра
// @Tags pairing
// @Produce json
// @Param flowID path string true "Flow ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Поток не найден"
// @Security BearerAuth
// @Router /flows/{flowID}/pairing/partner [delete]
func (h *PairingHandler) Remove(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	flow, err := h.pairingService.RemovePartner(r.Context(), chi.URLParam(r, "flowID"), principal.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": flow}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetShirtSize godoc
// @Summary Указать размер формы партнёра
// @Tags pairing
// @Accept json
// @Produce json
// @Param flowID path string true "Flow ID"
// @Param body body object true "size: PP|P|M|G|GG"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Недопустимый размер"
// @Failure 404 {object} map[string]string "Поток не найден"
// @Security BearerAuth
// @Router /flows/{flowID}/pairing/shirt-size [post]
func (h *PairingHandler) SetShirtSize(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		Size models.ShirtSize `json:"size"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	flow, err := h.pairingService.SetShirtSize(r.Context(), chi.URLParam(r, "flowID"), principal.UserID, input.Size)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": flow}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Confirm godoc
// @Summary Подтвердить пару и выбрать категорию
// @Tags pairing
// @Description Успешно только при заполненных партнёре и размере формы; иначе 422 и состояние не меняется.
// @Produce json
// @Param flowID path string true "Flow ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Поток не найден"
// @Failure 422 {object} map[string]string "Пара не полна"
// @Security BearerAuth
// @Router /flows/{flowID}/pairing/confirm [post]
func (h *PairingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	flow, err := h.pairingService.Confirm(r.Context(), chi.URLParam(r, "flowID"), principal.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": flow}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelPairing godoc
// @Summary Закрыть диалог подбора без подтверждения
// @Tags pairing
// @Description pairing_pending → unselected, поля пары чистятся.
// @Produce json
// @Param flowID path string true "Flow ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Поток не найден"
// @Security BearerAuth
// @Router /flows/{flowID}/pairing [delete]
func (h *PairingHandler) CancelPairing(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	flow, err := h.pairingService.Cancel(r.Context(), chi.URLParam(r, "flowID"), principal.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": flow}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

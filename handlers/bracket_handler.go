package handlers

import (
	"net/http"

	"github.com/beachpoint/portal/middleware"
	"github.com/beachpoint/portal/services"
)

type BracketHandler struct {
	bracketService *services.BracketService
}

func NewBracketHandler(bs *services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// GetBracket godoc
// @Summary Сетка категории: группы и матчи с резолвнутыми игроками
// @Tags brackets
// @Description Каждый матч доведён от регистраций до конкретных игроков; битые ссылки отображаются как "Desconhecido", ошибки не выбрасываются.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param categoryID path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/categories/{categoryID}/bracket [get]
func (h *BracketHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
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
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), principal.Token, tournamentID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Подписчики комнаты получают ту же свежую сетку.
	h.bracketService.NotifyUpdated(view)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

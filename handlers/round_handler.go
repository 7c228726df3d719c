package handlers

import (
	"net/http"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/services"
)

type RoundHandler struct {
	roundService services.RoundService
}

func NewRoundHandler(rs services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: rs}
}

type recordResultInput struct {
	// null или "" очищает результат
	Result *string `json:"result"`
}

// ListRounds godoc
// @Summary Туры турнира с парами
// @Tags rounds
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/rounds [get]
func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.roundService.ListRounds(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartTournament godoc
// @Summary Начать турнир
// @Tags rounds
// @Description Фиксирует число туров и формирует пары первого тура.
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Турнир уже начат"
// @Failure 422 {object} map[string]string "Нечётное число игроков или меньше четырёх"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/start [post]
func (h *RoundHandler) StartTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.StartTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResult godoc
// @Summary Записать результат партии
// @Tags rounds
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Param pairingID path string true "Pairing ID (UUID)"
// @Param input body recordResultInput true "1-0, 0-1, 0.5-0.5, 0-0 или null"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Партия не из текущего тура или тур завершён"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/pairings/{pairingID}/result [put]
func (h *RoundHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pairingID, err := getUUIDFromURL(r, "pairingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input recordResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result := models.ResultUnset
	if input.Result != nil {
		result, err = models.ParseResult(*input.Result)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	pairing, err := h.roundService.RecordResult(r.Context(), tournamentID, pairingID, result)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pairing": pairing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinishRound обрабатывает POST /tournaments/{tournamentID}/rounds/current/finish
func (h *RoundHandler) FinishRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.FinishRound(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// NextRound обрабатывает POST /tournaments/{tournamentID}/rounds/next
func (h *RoundHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.NextRound(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinishTournament обрабатывает POST /tournaments/{tournamentID}/finish.
// Допускается досрочное завершение.
func (h *RoundHandler) FinishTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.roundService.FinishTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

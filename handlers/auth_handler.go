package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/swiss-tournament/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginInput struct {
	Password string `json:"password"`
}

// Login godoc
// @Summary Войти как редактор турнира
// @Tags auth
// @Description Обменивает пароль турнира на токен редактора, привязанный к этому турниру.
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID (UUID)"
// @Param input body loginInput true "Пароль турнира"
// @Success 200 {object} services.EditorToken
// @Failure 401 {object} map[string]string "Неверный пароль"
// @Failure 404 {object} map[string]string
// @Failure 429 {object} map[string]string "Слишком много попыток"
// @Router /tournaments/{tournamentID}/auth [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input loginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Password == "" {
		badRequestResponse(w, r, errors.New("password is required"))
		return
	}

	token, err := h.authService.Login(r.Context(), tournamentID, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, token, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

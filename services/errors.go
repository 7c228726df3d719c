package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPairingNotFound    = errors.New("pairing not found")

	// Ошибки валидации
	ErrValidationFailed       = errors.New("validation failed")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrPlayerNameRequired     = errors.New("player name is required")
	ErrPlayerRatingInvalid    = errors.New("player rating must not be negative")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrInvalidResult          = errors.New("invalid game result")

	// Ошибки жизненного цикла турнира
	ErrInvalidTransition        = errors.New("operation not allowed in the current tournament state")
	ErrRosterLocked             = errors.New("players can only be changed before the tournament starts")
	ErrRoundNotComplete         = errors.New("current round has games without a result")
	ErrRoundNotFinished         = errors.New("current round is not finished yet")
	ErrRoundAlreadyFinished     = errors.New("current round is already finished")
	ErrNoMoreRounds             = errors.New("all rounds have been played")
	ErrPairingNotInCurrentRound = errors.New("pairing does not belong to the current round")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials   = errors.New("invalid tournament password")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current token")
)

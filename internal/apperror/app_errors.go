package apperror

import "errors"

var (
	ErrRoomFull            = errors.New("game is full, please try again later")
	ErrInvalidPlacement    = errors.New("invalid ship placement")
	ErrDuplicateSubmission = errors.New("fleet already submitted")
	ErrNotYourTurn         = errors.New("it's not your turn")
	ErrGameFinished        = errors.New("game is already finished")
	ErrAlreadyAttacked     = errors.New("cell is already attacked")
	ErrGameIsNotStarted    = errors.New("game is not started")
	ErrPlacingFinished     = errors.New("ship placement is already finished")
	ErrInvalidCell         = errors.New("invalid cell")
	ErrNoRole              = errors.New("player has no role")
	ErrRoleMismatch        = errors.New("role does not belong to player")
	ErrSessionNotFound     = errors.New("session not found")
)

package services

import "errors"

// Validation errors: rejected synchronously, no state mutation.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientMaterials = errors.New("insufficient materials")
	ErrInsufficientEnergy    = errors.New("insufficient energy")
	ErrInvalidBet            = errors.New("invalid bet parameters")
	ErrExpeditionActive      = errors.New("an expedition is already active")
	ErrExpeditionNotFinished = errors.New("expedition is not finished yet")
	ErrRigBusy               = errors.New("rig is committed to an active expedition")
	ErrRigExpired            = errors.New("rig has expired")
	ErrRigTooSmall           = errors.New("rig investment below the dungeon minimum")
	ErrGameActive            = errors.New("a mines game is already active")
	ErrTileAlreadyRevealed   = errors.New("tile already revealed")
	ErrNothingRevealed       = errors.New("cannot cash out before revealing a tile")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrInvalidCredentials    = errors.New("invalid username or password")
)

// Not-found and desync errors. A desync means the client acted on
// state the server no longer has; the caller should resynchronize
// from the authoritative record instead of retrying.
var (
	ErrNotFound      = errors.New("not found")
	ErrNotOwner      = errors.New("resource belongs to another account")
	ErrGameNotActive = errors.New("game is not active")
)

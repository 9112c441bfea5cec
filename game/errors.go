package game

import "fmt"

// Code is a machine-readable rejection code. Agent-facing callers branch on
// these to retry with corrected arguments.
type Code string

const (
	CodeWrongStatus     Code = "WRONG_STATUS"
	CodeWrongPhase      Code = "WRONG_PHASE"
	CodeNotYourTurn     Code = "NOT_YOUR_TURN"
	CodeNotOwner        Code = "NOT_OWNER"
	CodeNotAdjacent     Code = "NOT_ADJACENT"
	CodeBadTroopCount   Code = "BAD_TROOP_COUNT"
	CodeBadDiceCount    Code = "BAD_DICE_COUNT"
	CodeConquestPending Code = "CONQUEST_PENDING"
	CodeNoConquest      Code = "NO_CONQUEST_PENDING"
	CodeFortifyUsed     Code = "FORTIFY_USED"
	CodeNoCardSet       Code = "NO_CARD_SET"
	CodeNationTaken     Code = "NATION_TAKEN"
	CodeUnknownNation   Code = "UNKNOWN_NATION"
	CodeNotEnoughSides  Code = "NOT_ENOUGH_PARTICIPANTS"
)

// ValidationError rejects a move without mutating any state.
type ValidationError struct {
	Code   Code
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func reject(code Code, format string, args ...any) error {
	return &ValidationError{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown game, participant, or territory.
type NotFoundError struct {
	Kind string // "game", "participant", "territory", "scenario"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

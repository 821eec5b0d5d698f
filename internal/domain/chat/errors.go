package chat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for the conversation and workspace use cases. Handlers
// classify them into the HTTP taxonomy with errors.Is.
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrFaqNotFound          = errors.New("faq entry not found or inactive")

	ErrConversationAccessDenied = errors.New("conversation does not belong to the current customer session")
	ErrAgentAccessDenied        = errors.New("conversation is not accessible by this agent")

	ErrConversationClosed = errors.New("conversation is closed and read-only")

	ErrEmptyContent = errors.New("message content cannot be empty")

	// ErrNoAgentAvailable signals routing exhaustion. Callers absorb it
	// into the "queued, unassigned" outcome; it never reaches the API
	// boundary.
	ErrNoAgentAvailable = errors.New("no agent available")

	// ErrConversationAlreadyAssigned is surfaced by the conditional
	// assignment when another agent won the claim first.
	ErrConversationAlreadyAssigned = errors.New("conversation is already assigned to an agent")

	ErrInvalidCredentials = errors.New("invalid agent credentials")
)

// InvalidTransitionError carries the offending (status, action) pair of a
// rejected lifecycle transition.
type InvalidTransitionError struct {
	Current ConversationStatus
	Action  TransitionAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot apply action %q from state %q", e.Action, e.Current)
}

// ModeError is returned when a conversation is in the wrong lifecycle
// mode for the requested action (bot actions require AUTOMATED, agent
// actions require AGENT).
type ModeError struct {
	ConversationID uuid.UUID
	Status         ConversationStatus
	Required       ConversationStatus
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("conversation %s is in %q mode, action requires %q mode",
		e.ConversationID, e.Status, e.Required)
}

package chat

type transitionKey struct {
	current ConversationStatus
	action  TransitionAction
}

var allowedTransitions = map[transitionKey]ConversationStatus{
	{StatusAutomated, ActionEscalateToAgent}: StatusAgent,
	{StatusAgent, ActionCloseByAgent}:        StatusClosed,
}

// Transition applies a lifecycle action to the current status and returns
// the next status. Repeating an action that already took effect is a
// no-op (AGENT+escalate, CLOSED+close); every other undefined pair fails
// with InvalidTransitionError.
func Transition(current ConversationStatus, action TransitionAction) (ConversationStatus, error) {
	// Idempotent semantics for repeated UI actions.
	if current == StatusAgent && action == ActionEscalateToAgent {
		return StatusAgent, nil
	}
	if current == StatusClosed && action == ActionCloseByAgent {
		return StatusClosed, nil
	}

	next, ok := allowedTransitions[transitionKey{current, action}]
	if !ok {
		return "", &InvalidTransitionError{Current: current, Action: action}
	}
	return next, nil
}

// IsReadOnly reports whether the conversation accepts no further
// mutations. CLOSED is the only terminal status.
func IsReadOnly(status ConversationStatus) bool {
	return status == StatusClosed
}

// ShouldShowTalkToAgent reports whether the escalation affordance is
// offered to the customer.
func ShouldShowTalkToAgent(status ConversationStatus) bool {
	return status == StatusAutomated
}

package chat

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		current ConversationStatus
		action  TransitionAction
		want    ConversationStatus
		wantErr bool
	}{
		{"automated escalates to agent", StatusAutomated, ActionEscalateToAgent, StatusAgent, false},
		{"agent closes to closed", StatusAgent, ActionCloseByAgent, StatusClosed, false},
		{"escalate is idempotent in agent mode", StatusAgent, ActionEscalateToAgent, StatusAgent, false},
		{"close is idempotent when closed", StatusClosed, ActionCloseByAgent, StatusClosed, false},
		{"automated cannot close", StatusAutomated, ActionCloseByAgent, "", true},
		{"closed cannot escalate", StatusClosed, ActionEscalateToAgent, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.action)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got status %q", got)
				}
				var invalid *InvalidTransitionError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidTransitionError, got %T", err)
				}
				if invalid.Current != tt.current || invalid.Action != tt.action {
					t.Fatalf("error carries (%q, %q), want (%q, %q)",
						invalid.Current, invalid.Action, tt.current, tt.action)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Transition() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsReadOnly(t *testing.T) {
	tests := []struct {
		status ConversationStatus
		want   bool
	}{
		{StatusAutomated, false},
		{StatusAgent, false},
		{StatusClosed, true},
	}
	for _, tt := range tests {
		if got := IsReadOnly(tt.status); got != tt.want {
			t.Errorf("IsReadOnly(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestShouldShowTalkToAgent(t *testing.T) {
	tests := []struct {
		status ConversationStatus
		want   bool
	}{
		{StatusAutomated, true},
		{StatusAgent, false},
		{StatusClosed, false},
	}
	for _, tt := range tests {
		if got := ShouldShowTalkToAgent(tt.status); got != tt.want {
			t.Errorf("ShouldShowTalkToAgent(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

package domain

import (
	"errors"
	"time"
)

type EntityKind string

var ErrUnknownKind = errors.New("unknown entity kind")

const (
	EntityOrder EntityKind = "order"
	EntityUser  EntityKind = "user"
)

func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case EntityOrder, EntityUser:
		return EntityKind(s), nil
	}
	return "", ErrUnknownKind
}

type GateState string

const (
	GateClosed          GateState = "closed"
	GateAwaitingStep1   GateState = "awaiting_step_1"
	GateAwaitingStep2   GateState = "awaiting_step_2"
	GateCommitting      GateState = "committing"
	GateResolvedSuccess GateState = "resolved_success"
	GateResolvedFailure GateState = "resolved_failure"
	GateCancelled       GateState = "cancelled"
)

// IsTerminal reports whether the gate holds no active request in this state.
func (s GateState) IsTerminal() bool {
	switch s {
	case GateClosed, GateResolvedSuccess, GateResolvedFailure, GateCancelled:
		return true
	}
	return false
}

// TransitionRequest is the ephemeral, never-persisted request an admin
// builds by picking a new value in a selector.
type TransitionRequest struct {
	ID            string     `json:"id"`
	Kind          EntityKind `json:"kind"`
	EntityID      string     `json:"entityId"`
	EntityLabel   string     `json:"entityLabel"`
	CurrentValue  string     `json:"currentValue"`
	ProposedValue string     `json:"proposedValue"`
	ConfirmStep   int        `json:"confirmStep"`
	Critical      bool       `json:"critical"`
	OpenedAt      time.Time  `json:"openedAt"`
}

type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeReplaced  Outcome = "replaced"
)

// TransitionRecord is the audit row written once a request resolves.
type TransitionRecord struct {
	RequestID     string     `json:"requestId"`
	ViewID        string     `json:"viewId,omitempty"`
	Kind          EntityKind `json:"kind"`
	EntityID      string     `json:"entityId"`
	FromValue     string     `json:"from"`
	ToValue       string     `json:"to"`
	Outcome       Outcome    `json:"outcome"`
	Confirmations int        `json:"confirmations"`
	ErrorMessage  string     `json:"error,omitempty"`
	Actor         string     `json:"actor,omitempty"`
	OpenedAt      time.Time  `json:"openedAt"`
	ResolvedAt    time.Time  `json:"resolvedAt"`
}

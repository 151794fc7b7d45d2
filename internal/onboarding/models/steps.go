package models

import (
	"fmt"
	"strings"

	dErrors "veriledger/pkg/domain-errors"
)

// Step is an onboarding state.
type Step string

const (
	StepNotStarted            Step = "NOT_STARTED"
	StepRegistration          Step = "REGISTRATION"
	StepInvestorTypeSelection Step = "INVESTOR_TYPE_SELECTION"
	StepEligibilityCheck      Step = "ELIGIBILITY_CHECK"
	StepDocumentUpload        Step = "DOCUMENT_UPLOAD"
	StepFinalVerification     Step = "FINAL_VERIFICATION"
	StepCompleted             Step = "COMPLETED"
	StepFailed                Step = "FAILED"
)

type edge struct {
	next Step
	fail Step
}

// transitions maps each state to its successor and failure state. Terminal
// states have no entry.
var transitions = map[Step]edge{
	StepNotStarted:            {next: StepRegistration},
	StepRegistration:          {next: StepInvestorTypeSelection, fail: StepFailed},
	StepInvestorTypeSelection: {next: StepEligibilityCheck, fail: StepFailed},
	StepEligibilityCheck:      {next: StepDocumentUpload, fail: StepFailed},
	StepDocumentUpload:        {next: StepFinalVerification, fail: StepFailed},
	StepFinalVerification:     {next: StepCompleted, fail: StepFailed},
}

// Sequence is the executable steps in order.
var Sequence []Step

func init() {
	if err := checkTransitions(transitions); err != nil {
		panic(err)
	}
	for s := transitions[StepNotStarted].next; s != StepCompleted; s = transitions[s].next {
		Sequence = append(Sequence, s)
	}
}

// checkTransitions verifies every non-terminal state has a successor, every
// in-progress state can fail, and following successors from NOT_STARTED
// visits each state once before reaching COMPLETED.
func checkTransitions(table map[Step]edge) error {
	for from, e := range table {
		if e.next == "" {
			return fmt.Errorf("onboarding: %s has no successor", from)
		}
		if from != StepNotStarted && e.fail != StepFailed {
			return fmt.Errorf("onboarding: %s has no failure edge", from)
		}
	}
	seen := map[Step]bool{}
	for s := StepNotStarted; s != StepCompleted; s = table[s].next {
		if seen[s] {
			return fmt.Errorf("onboarding: cycle at %s", s)
		}
		seen[s] = true
		if _, ok := table[s]; !ok {
			return fmt.Errorf("onboarding: sequence stops at %q", s)
		}
	}
	if len(seen) != len(table) {
		return fmt.Errorf("onboarding: %d states are off the main sequence", len(table)-len(seen))
	}
	return nil
}

// Next returns the successor of s. Terminal states have none.
func (s Step) Next() (Step, bool) {
	e, ok := transitions[s]
	return e.next, ok
}

// IsTerminal reports whether s ends a session.
func (s Step) IsTerminal() bool {
	return s == StepCompleted || s == StepFailed
}

// IsExecutable reports whether s is a step a caller can execute.
func (s Step) IsExecutable() bool {
	_, ok := transitions[s]
	return ok && s != StepNotStarted
}

// ParseStep accepts step names case-insensitively.
func ParseStep(raw string) (Step, error) {
	s := Step(strings.ToUpper(strings.TrimSpace(raw)))
	if s.IsExecutable() || s.IsTerminal() || s == StepNotStarted {
		return s, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown onboarding step: "+raw)
}

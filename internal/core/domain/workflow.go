package domain

import "fmt"

// EntityKind selects which transition table gates a status change.
type EntityKind string

const (
	KindCitizen             EntityKind = "citizen"
	KindCitizenVerification EntityKind = "citizen_verification"
	KindVisit               EntityKind = "visit"
	KindSOS                 EntityKind = "sos"
)

// WorkflowError reports an illegal state transition. It is always surfaced
// to the caller as a rejected operation and never retried.
type WorkflowError struct {
	Kind EntityKind
	From string
	To   string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("illegal %s transition: %q -> %q", e.Kind, e.From, e.To)
}

// transitions is the allow-list of legal status changes per entity kind.
// A status missing from its kind's map is terminal. The forward-skip edges
// (scheduled -> completed, active -> resolved) are deliberate allowances
// for manual and emergency entry.
var transitions = map[EntityKind]map[string][]string{
	KindCitizen: {
		string(CitizenPending):  {string(CitizenVerified), string(CitizenInactive)},
		string(CitizenVerified): {string(CitizenInactive), string(CitizenDeceased)},
		string(CitizenInactive): {string(CitizenVerified), string(CitizenDeceased)},
		string(CitizenDeceased): {},
	},
	KindCitizenVerification: {
		string(VerificationPending):    {string(VerificationInProgress), string(VerificationApproved), string(VerificationRejected)},
		string(VerificationInProgress): {string(VerificationApproved), string(VerificationRejected)},
		string(VerificationApproved):   {string(VerificationRejected)},
		string(VerificationRejected):   {string(VerificationPending), string(VerificationApproved)},
	},
	KindVisit: {
		string(VisitScheduled):  {string(VisitInProgress), string(VisitCancelled), string(VisitCompleted)},
		string(VisitInProgress): {string(VisitCompleted), string(VisitCancelled)},
		string(VisitCompleted):  {},
		string(VisitCancelled):  {string(VisitScheduled)}, // reopen allowed
	},
	KindSOS: {
		string(SOSActive):     {string(SOSResponded), string(SOSFalseAlarm), string(SOSResolved)},
		string(SOSResponded):  {string(SOSResolved), string(SOSFalseAlarm)},
		string(SOSResolved):   {},
		string(SOSFalseAlarm): {},
	},
}

// ValidateTransition checks a proposed status change against the allow-list.
// current == next is always a no-op. It has no side effects; every mutating
// operation consults it before persisting a status change.
func ValidateTransition(kind EntityKind, current, next string) error {
	if current == next {
		return nil
	}
	allowed, ok := transitions[kind][current]
	if !ok {
		return &WorkflowError{Kind: kind, From: current, To: next}
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return &WorkflowError{Kind: kind, From: current, To: next}
}

package enums

import "fmt"

// ApplicationStatus tracks the lifecycle of a user's relationship to a gig.
// The same value is stored on both mirror rows for a (user, gig) pair.
type ApplicationStatus string

const (
	ApplicationStatusBookmarked          ApplicationStatus = "bookmarked"
	ApplicationStatusApplied             ApplicationStatus = "applied"
	ApplicationStatusShortlisted         ApplicationStatus = "shortlisted"
	ApplicationStatusAccepted            ApplicationStatus = "accepted"
	ApplicationStatusRejected            ApplicationStatus = "rejected"
	ApplicationStatusCompleted           ApplicationStatus = "completed"
	ApplicationStatusWithdrawalRequested ApplicationStatus = "withdrawal_requested"
	ApplicationStatusWithdrawalProcessed ApplicationStatus = "withdrawal_processed"
)

var validApplicationStatuses = []ApplicationStatus{
	ApplicationStatusBookmarked,
	ApplicationStatusApplied,
	ApplicationStatusShortlisted,
	ApplicationStatusAccepted,
	ApplicationStatusRejected,
	ApplicationStatusCompleted,
	ApplicationStatusWithdrawalRequested,
	ApplicationStatusWithdrawalProcessed,
}

// Legacy clients still send "pending" and "selected"; they are normalized on
// parse and never stored.
var legacyStatusAliases = map[string]ApplicationStatus{
	"pending":  ApplicationStatusApplied,
	"selected": ApplicationStatusAccepted,
}

// IsValid checks whether the value is a canonical status.
func (s ApplicationStatus) IsValid() bool {
	for _, candidate := range validApplicationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the active lifecycle. Terminal
// rows are never deleted; the status is simply final.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusRejected, ApplicationStatusCompleted, ApplicationStatusWithdrawalProcessed:
		return true
	default:
		return false
	}
}

// ParseApplicationStatus converts raw strings into ApplicationStatus,
// accepting the documented legacy aliases.
func ParseApplicationStatus(value string) (ApplicationStatus, error) {
	if mapped, ok := legacyStatusAliases[value]; ok {
		return mapped, nil
	}
	for _, candidate := range validApplicationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid application status %q", value)
}

// AdminAssignableStatuses are the values an admin transition may set directly.
var AdminAssignableStatuses = []ApplicationStatus{
	ApplicationStatusApplied,
	ApplicationStatusShortlisted,
	ApplicationStatusAccepted,
	ApplicationStatusRejected,
	ApplicationStatusCompleted,
}

// IsAdminAssignable reports whether the status can be set through the admin
// status endpoint.
func (s ApplicationStatus) IsAdminAssignable() bool {
	for _, candidate := range AdminAssignableStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

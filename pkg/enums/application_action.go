package enums

import "fmt"

// ApplicationAction enumerates the multiplexed PATCH actions on an
// application.
type ApplicationAction string

const (
	ApplicationActionBookmark   ApplicationAction = "bookmark"
	ApplicationActionBoost      ApplicationAction = "boost"
	ApplicationActionSubmitWork ApplicationAction = "submit_work"
	ApplicationActionWithdraw   ApplicationAction = "withdraw"
)

var validApplicationActions = []ApplicationAction{
	ApplicationActionBookmark,
	ApplicationActionBoost,
	ApplicationActionSubmitWork,
	ApplicationActionWithdraw,
}

// ParseApplicationAction converts raw strings into ApplicationAction.
func ParseApplicationAction(value string) (ApplicationAction, error) {
	for _, candidate := range validApplicationActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid application action %q", value)
}

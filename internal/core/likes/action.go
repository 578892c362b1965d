package likes

import "fmt"

// Action is the path segment of the like endpoint
type Action string

const (
	ActionLike   Action = "like"
	ActionUnlike Action = "unlike"
)

// ActionFor resolves the request to send for a new flag value
func ActionFor(liked bool) Action {
	if liked {
		return ActionLike
	}
	return ActionUnlike
}

// ParseAction validates a path segment
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionLike, ActionUnlike:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// Delta is the change a confirmed action applies to the displayed count
func (a Action) Delta() int {
	if a == ActionLike {
		return 1
	}
	return -1
}

func (a Action) String() string {
	return string(a)
}

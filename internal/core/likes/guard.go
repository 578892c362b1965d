package likes

// FirstInvocationGuard lets the toggle reaction skip its very first run.
// The first run is the instance committing its seeded flag, not a user press.
// Not safe for concurrent use; the owning instance serialises access.
type FirstInvocationGuard struct {
	armed bool
}

// NewFirstInvocationGuard returns an armed guard
func NewFirstInvocationGuard() FirstInvocationGuard {
	return FirstInvocationGuard{armed: true}
}

// Pass reports whether the reaction may run its side effect.
// It returns false exactly once, disarming the guard, and true ever after.
func (g *FirstInvocationGuard) Pass() bool {
	if g.armed {
		g.armed = false
		return false
	}
	return true
}

// Armed reports whether the next Pass will be swallowed
func (g *FirstInvocationGuard) Armed() bool {
	return g.armed
}

package likes

// OptimisticState holds the flag and the locally maintained count of one instance.
// Toggle is the only way to change the flag. The count moves only when a request is confirmed
// or when the authoritative count arrives.
type OptimisticState struct {
	liked      bool
	localCount int
}

func newOptimisticState(liked bool, count int) OptimisticState {
	return OptimisticState{liked: liked, localCount: count}
}

// Liked reports the current flag
func (s *OptimisticState) Liked() bool {
	return s.liked
}

// LocalCount reports the locally maintained count
func (s *OptimisticState) LocalCount() int {
	return s.localCount
}

// Toggle flips the flag and returns the new value
func (s *OptimisticState) Toggle() bool {
	s.liked = !s.liked
	return s.liked
}

// adjust applies a confirmed action
func (s *OptimisticState) adjust(action Action) {
	s.localCount += action.Delta()
}

// supersede replaces the count with the authoritative value
func (s *OptimisticState) supersede(count int) {
	s.localCount = count
}

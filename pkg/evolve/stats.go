package evolve

// MoveCommitsStats counts move-commits outcomes (§3, §8). A second
// identical invocation should observe NumRebasedTargets ==
// NumRebasedDescendants == NumAbandoned == 0 and NumSkippedRebases equal
// to the number of commits visited (the idempotence property).
type MoveCommitsStats struct {
	NumRebasedTargets     int
	NumRebasedDescendants int
	NumSkippedRebases     int
	NumAbandoned          int
}

package session

// trimToCap drops the oldest turns so at most maxTurns remain. Turns are dropped
// in user/model pairs so the history never starts with a model reply.
func trimToCap(turns []Turn, maxTurns int) []Turn {
	if maxTurns <= 0 || len(turns) <= maxTurns {
		return turns
	}

	drop := len(turns) - maxTurns
	if drop%2 != 0 {
		drop++
	}
	if drop >= len(turns) {
		return []Turn{}
	}

	pruned := make([]Turn, len(turns)-drop)
	copy(pruned, turns[drop:])
	return pruned
}

package scheduler

import "sync/atomic"

// Generation hands out increasing run tokens so a caller can discard results
// of runs that were superseded while they were computing.
type Generation struct {
	n atomic.Uint64
}

// Next starts a new generation and returns its token.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// IsCurrent reports whether token belongs to the latest generation.
func (g *Generation) IsCurrent(token uint64) bool {
	return token == g.n.Load()
}

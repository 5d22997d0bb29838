package observer

// Guard is a reentrancy flag for observer update paths.
//
//	if !o.guard.Enter() {
//	    return
//	}
//	defer o.guard.Leave()
type Guard struct {
	depth int
}

// Enter marks the guarded path as running. It returns false if it already is.
func (g *Guard) Enter() bool {
	if g.depth > 0 {
		return false
	}
	g.depth++
	return true
}

// Leave marks the guarded path as finished.
func (g *Guard) Leave() {
	if g.depth > 0 {
		g.depth--
	}
}

// Active reports whether the guarded path is running.
func (g *Guard) Active() bool {
	return g.depth > 0
}

// Do runs fn unless the guarded path is already running.
// It reports whether fn ran.
func (g *Guard) Do(fn func()) bool {
	if !g.Enter() {
		return false
	}
	defer g.Leave()
	fn()
	return true
}

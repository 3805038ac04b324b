package controller

// Latch turns a level into an edge: Run is true only on the first call with v
// true after a call with v false.
type Latch struct {
	val bool
}

func (l *Latch) Run(v bool) bool {
	r := v && !l.val
	l.val = v
	return r
}

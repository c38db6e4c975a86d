package monitor

// Observation is one side of a comparison, gathered in the current cycle.
type Observation struct {
	Addr string
	OK   bool
}

// Diverged reports whether two addresses differ. Both sides come from the same
// platform tooling, so no normalization is applied.
func Diverged(a, b string) bool {
	return a != b
}

// Decide reports drift only when both sides were observed in this cycle and differ.
func Decide(current, resolved Observation) bool {
	if !current.OK || !resolved.OK {
		return false
	}
	return Diverged(current.Addr, resolved.Addr)
}

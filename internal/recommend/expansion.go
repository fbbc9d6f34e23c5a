package recommend

// State is a phase of the radius expansion loop.
type State int

const (
	StateInitial State = iota
	StateExpanding
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateExpanding:
		return "expanding"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// expander drives the search radius. Each call to advance records one
// completed scoring pass and either finishes or widens the radius.
//
// The radius never exceeds ceiling: the step that would overshoot is clamped
// to ceiling so events inside the ceiling are always reachable, and a pass
// run at (or beyond) ceiling is the last one.
type expander struct {
	state  State
	radius float64
	passes int

	fallback float64
	factor   float64
	ceiling  float64
}

func newExpander(opts Options, hasHistory bool, maxAttendedKm float64) *expander {
	radius := opts.FallbackRadiusKm
	if hasHistory {
		radius = maxAttendedKm * opts.StartMultiplier
	}
	return &expander{
		state:    StateInitial,
		radius:   radius,
		fallback: opts.FallbackRadiusKm,
		factor:   opts.ExpansionFactor,
		ceiling:  opts.CeilingKm,
	}
}

func (e *expander) advance(accumulated, limit int) {
	e.passes++

	if accumulated >= limit || e.radius >= e.ceiling {
		e.state = StateDone
		return
	}

	next := e.radius * e.factor
	if e.radius <= 0 {
		// a zero radius never grows by multiplication
		next = e.fallback
	}
	if next > e.ceiling {
		next = e.ceiling
	}

	e.radius = next
	e.state = StateExpanding
}

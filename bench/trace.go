package bench

import "time"

type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhaseCommitment Phase = "commitment"
	PhaseInclusion  Phase = "inclusion"
)

// Window is the half-open interval [Start, End) a phase ran in.
type Window struct {
	Phase Phase
	Start time.Time
	End   time.Time
}

func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

func (w Window) overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Trace is the observable history of one run.
type Trace struct {
	States  []State
	Windows []Window
}

func (t Trace) Window(p Phase) (Window, bool) {
	for _, w := range t.Windows {
		if w.Phase == p {
			return w, true
		}
	}
	return Window{}, false
}

// Overlapping reports whether any two recorded phase windows intersect.
func (t Trace) Overlapping() bool {
	for i := range t.Windows {
		for j := i + 1; j < len(t.Windows); j++ {
			if t.Windows[i].overlaps(t.Windows[j]) {
				return true
			}
		}
	}
	return false
}

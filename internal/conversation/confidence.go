package conversation

// Signals are the presence checks confidence is computed from.
type Signals struct {
	Amount       bool
	Title        bool
	Participants bool
	Context      bool
}

// Confidence is the fraction of signals present, so one of 0, .25, .5, .75 or 1.
func Confidence(s Signals) float64 {
	n := 0
	for _, present := range []bool{s.Amount, s.Title, s.Participants, s.Context} {
		if present {
			n++
		}
	}
	return float64(n) / 4
}

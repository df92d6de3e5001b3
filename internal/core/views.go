package core

// Growth stages of the financial-freedom "plant", derived from the LF
// balance. Bands are inclusive on the low side: exactly 100.00 is still a
// seed and exactly 1000.00 still a sprout.
const (
	StageSeed   Stage = "seed"
	StageSprout Stage = "sprout"
	StageTree   Stage = "tree"
)

type Stage string

const (
	seedMaxCents   = 100_00
	sproutMaxCents = 1000_00
)

// TotalBalance sums all six jar balances.
func (s State) TotalBalance() Money {
	var total Money
	for _, j := range Jars {
		total = total.Add(s.Balances[j])
	}
	return total
}

// GrowthStage classifies the LF balance into a display stage.
func (s State) GrowthStage() Stage {
	lf := s.Balances[LF].Cents
	switch {
	case lf <= seedMaxCents:
		return StageSeed
	case lf <= sproutMaxCents:
		return StageSprout
	default:
		return StageTree
	}
}

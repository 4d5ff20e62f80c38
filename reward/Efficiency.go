package reward

// Default efficiency-shaped reward terms
const (
	DefaultTargetLength      = 20
	DefaultLengthPenalty     = 0.1
	DefaultBrevityBonus      = 0.5
	DefaultEfficiencyBonus   = 20.0
	DefaultEfficiencyPenalty = -2.0
)

// Efficiency rewards exact matches more strongly than Correctness and
// additionally shapes the reward by program length: programs shorter
// than the target length earn a brevity bonus on success, programs
// longer than the target pay a growing penalty. Steps that do not
// succeed fall back to the correctness-shaped terms.
type Efficiency struct {
	targetLength  int
	lengthPenalty float64
	brevityBonus  float64
	successBonus  float64
	errorPenalty  float64
	correctness   *Correctness
}

// NewEfficiency returns an Efficiency reward targeting the given
// program length. A targetLength <= 0 uses the default.
func NewEfficiency(targetLength int) *Efficiency {
	if targetLength <= 0 {
		targetLength = DefaultTargetLength
	}
	return &Efficiency{
		targetLength:  targetLength,
		lengthPenalty: DefaultLengthPenalty,
		brevityBonus:  DefaultBrevityBonus,
		successBonus:  DefaultEfficiencyBonus,
		errorPenalty:  DefaultEfficiencyPenalty,
		correctness:   NewCorrectness(),
	}
}

// Reward computes the efficiency-shaped reward for one step
func (e *Efficiency) Reward(program []string, action string, out Outcome,
	expected string) float64 {

	// Excess length beyond the target is penalized regardless of
	// outcome
	r := 0.0
	if excess := len(program) - e.targetLength; excess > 0 {
		r -= e.lengthPenalty * float64(excess)
	}

	switch {
	case out.Success:
		r += e.successBonus
		if short := e.targetLength - len(program); short > 0 {
			r += e.brevityBonus * float64(short)
		}
	case out.Errored():
		r += e.errorPenalty
	default:
		r += e.correctness.Reward(program, action, out, expected)
	}
	return r
}

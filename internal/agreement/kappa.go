package agreement

// Strength is the Landis & Koch reading of a kappa value.
type Strength string

const (
	StrengthPoor          Strength = "poor"
	StrengthSlight        Strength = "slight"
	StrengthFair          Strength = "fair"
	StrengthModerate      Strength = "moderate"
	StrengthSubstantial   Strength = "substantial"
	StrengthAlmostPerfect Strength = "almost_perfect"
)

// CohenKappa computes chance-corrected agreement from a confusion matrix.
// When expected agreement is 1 (a single label on both sides) the result is 0.
func CohenKappa(m ConfusionMatrix) float64 {
	n := m.Total()
	if n == 0 {
		return 0
	}

	total := float64(n)
	po := float64(m.Trace()) / total

	var pe float64
	for i := range m.Labels {
		pe += float64(m.RowSum(i)) * float64(m.ColSum(i))
	}
	pe /= total * total

	if pe == 1 {
		return 0
	}
	return (po - pe) / (1 - pe)
}

// Kappa is CohenKappa over two paired label sequences.
func Kappa(predicted, actual []string) (float64, error) {
	if err := checkPaired(predicted, actual); err != nil {
		return 0, err
	}
	return CohenKappa(NewConfusionMatrix(predicted, actual)), nil
}

// Interpret maps kappa onto the Landis & Koch bands.
func Interpret(kappa float64) Strength {
	switch {
	case kappa < 0:
		return StrengthPoor
	case kappa < 0.2:
		return StrengthSlight
	case kappa < 0.4:
		return StrengthFair
	case kappa < 0.6:
		return StrengthModerate
	case kappa < 0.8:
		return StrengthSubstantial
	default:
		return StrengthAlmostPerfect
	}
}

package recipe

import "math"

// Field names the value the user edited last.
type Field int

const (
	FieldCoffee Field = iota
	FieldWater
	FieldRatio
)

// Amounts is the coffee dose, water weight and water:coffee ratio.
type Amounts struct {
	Coffee float64
	Water  float64
	Ratio  float64
}

// DeriveConsistentAmounts reconciles the three values given which one was
// edited last. Editing an amount recomputes the ratio; editing the ratio
// recomputes the water for the current dose. Values that cannot be derived
// (no dose) are left as given.
func DeriveConsistentAmounts(in Amounts, lastEdited Field) Amounts {
	out := in
	switch lastEdited {
	case FieldCoffee, FieldWater:
		if in.Coffee > 0 && in.Water > 0 {
			out.Ratio = round1(in.Water / in.Coffee)
		}
	case FieldRatio:
		if in.Coffee > 0 && in.Ratio > 0 {
			out.Water = math.Round(in.Coffee * in.Ratio)
		} else if in.Water > 0 && in.Ratio > 0 {
			out.Coffee = round1(in.Water / in.Ratio)
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

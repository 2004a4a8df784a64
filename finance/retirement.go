package finance

import (
	"errors"
	"math"
)

// ErrProjectionOverflow is returned when compounding leaves the float range.
var ErrProjectionOverflow = errors.New("projection overflows; use a lower return rate or a shorter horizon")

type RetirementInput struct {
	CurrentAge    int
	TargetAge     int
	NetWorth      float64
	AnnualSavings float64
	AnnualReturn  float64
}

// DefaultRetirementInput is a 30 year old aiming for 60 at a 7% return.
func DefaultRetirementInput() RetirementInput {
	return RetirementInput{
		CurrentAge:   30,
		TargetAge:    60,
		AnnualReturn: 0.07,
	}
}

type RetirementProjection struct {
	YearsToTarget               int     `json:"years_to_target"`
	FutureValueExistingNetWorth float64 `json:"future_value_existing_net_worth"`
	FutureValueSavings          float64 `json:"future_value_savings"`
	ProjectedNetWorth           float64 `json:"projected_net_worth"`
}

// ProjectRetirement compounds the current net worth and the yearly savings
// (an ordinary annuity) up to the target age.
func ProjectRetirement(in RetirementInput) (RetirementProjection, error) {
	years := max(0, in.TargetAge-in.CurrentAge)
	growth := math.Pow(1+in.AnnualReturn, float64(years))

	fvNetWorth := in.NetWorth * growth
	var fvSavings float64
	if in.AnnualReturn != 0 {
		fvSavings = in.AnnualSavings * (growth - 1) / in.AnnualReturn
	} else {
		fvSavings = in.AnnualSavings * float64(years)
	}

	total := fvNetWorth + fvSavings
	if !finite(fvNetWorth) || !finite(fvSavings) || !finite(total) {
		return RetirementProjection{}, ErrProjectionOverflow
	}

	return RetirementProjection{
		YearsToTarget:               years,
		FutureValueExistingNetWorth: round2(fvNetWorth),
		FutureValueSavings:          round2(fvSavings),
		ProjectedNetWorth:           round2(total),
	}, nil
}

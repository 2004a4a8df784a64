package finance

type EPFBalanceResult struct {
	ByEmployer       []EstablishmentDetail `json:"by_employer"`
	OverallPFBalance *OverallPFBalance     `json:"overall_pf_balance"`
}

// EPFBalance extracts the per employer breakdown and overall balance of the
// first UAN account.
func EPFBalance(resp EPFResponse) (EPFBalanceResult, error) {
	if len(resp.UANAccounts) == 0 {
		return EPFBalanceResult{}, noData("No EPF details found.")
	}
	raw := resp.UANAccounts[0].RawDetails
	out := EPFBalanceResult{
		ByEmployer:       raw.EstDetails,
		OverallPFBalance: raw.OverallPFBalance,
	}
	if out.ByEmployer == nil {
		out.ByEmployer = []EstablishmentDetail{}
	}
	return out, nil
}

package finance

import (
	"sort"

	"github.com/samber/lo"
)

// Holdings flattens the equity holdings of every linked account. Accounts
// are visited in key order so results do not depend on map iteration.
func (r NetWorthResponse) Holdings() []EquityHolding {
	ids := lo.Keys(r.AccountDetailsBulk.AccountDetailsMap)
	sort.Strings(ids)

	var out []EquityHolding
	for _, id := range ids {
		acct := r.AccountDetailsBulk.AccountDetailsMap[id]
		if acct.EquitySummary == nil {
			continue
		}
		out = append(out, acct.EquitySummary.HoldingsInfo...)
	}
	return out
}

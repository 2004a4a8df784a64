package finance

type NetWorthSummary struct {
	Assets        map[string]float64 `json:"assets"`
	Liabilities   map[string]float64 `json:"liabilities"`
	TotalNetWorth float64            `json:"total_net_worth"`
}

// SummarizeNetWorth reshapes the net worth snapshot into attribute keyed
// maps. Missing amounts count as zero.
func SummarizeNetWorth(nw NetWorthResponse) NetWorthSummary {
	out := NetWorthSummary{
		Assets:      attributeMap(nw.NetWorth.AssetValues),
		Liabilities: attributeMap(nw.NetWorth.LiabilityValues),
	}
	if nw.NetWorth.TotalNetWorthValue != nil {
		out.TotalNetWorth = nw.NetWorth.TotalNetWorthValue.Float()
	}
	return out
}

func attributeMap(values []AttributeValue) map[string]float64 {
	m := make(map[string]float64, len(values))
	for _, v := range values {
		m[v.NetWorthAttribute] += v.Value.Float()
	}
	return m
}

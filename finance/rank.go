package finance

import "sort"

// DefaultTopN is used when a ranking is asked for without a positive size.
const DefaultTopN = 5

type FundPerformance struct {
	Scheme string  `json:"scheme"`
	XIRR   float64 `json:"XIRR"`
}

type StockHolding struct {
	ISIN   string  `json:"isin"`
	Issuer string  `json:"issuer"`
	Units  float64 `json:"units"`
	Price  float64 `json:"current_price"`
	Value  float64 `json:"value"`
}

// TopMutualFunds ranks schemes by XIRR, highest first. Schemes without an
// XIRR are left out.
func TopMutualFunds(nw NetWorthResponse, n int) ([]FundPerformance, error) {
	funds := make([]FundPerformance, 0, len(nw.MFSchemeAnalytics.SchemeAnalytics))
	for _, item := range nw.MFSchemeAnalytics.SchemeAnalytics {
		xirr := item.EnrichedAnalytics.Analytics.SchemeDetails.XIRR
		if !xirr.Valid {
			continue
		}
		funds = append(funds, FundPerformance{
			Scheme: item.SchemeDetail.NameData.LongName,
			XIRR:   xirr.Value,
		})
	}
	if len(funds) == 0 {
		return nil, noData("No mutual fund analytics found.")
	}
	return topN(funds, n, func(f FundPerformance) float64 { return f.XIRR }), nil
}

// TopStockHoldings ranks priced equity holdings by market value. Holdings
// without a last traded price are excluded, not valued at zero.
func TopStockHoldings(nw NetWorthResponse, n int) ([]StockHolding, error) {
	var holdings []StockHolding
	for _, h := range nw.Holdings() {
		price, ok := h.Price()
		if !ok {
			continue
		}
		units := h.Units.Or(0)
		holdings = append(holdings, StockHolding{
			ISIN:   h.ISIN,
			Issuer: h.IssuerName,
			Units:  units,
			Price:  price,
			Value:  price * units,
		})
	}
	if len(holdings) == 0 {
		return nil, noData("No priced equity holdings found.")
	}
	return topN(holdings, n, func(s StockHolding) float64 { return s.Value }), nil
}

func topN[T any](items []T, n int, key func(T) float64) []T {
	if n <= 0 {
		n = DefaultTopN
	}
	sort.SliceStable(items, func(i, j int) bool { return key(items[i]) > key(items[j]) })
	if len(items) > n {
		items = items[:n]
	}
	return items
}

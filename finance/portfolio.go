package finance

import (
	"sort"
)

const (
	txnKindBuy = 1

	// PortfolioBucketSize is how many holdings each side of the analysis lists.
	PortfolioBucketSize = 5
)

// HoldingPosition is one priced equity holding with its cost basis.
type HoldingPosition struct {
	ISIN         string  `json:"isin"`
	Issuer       string  `json:"issuer"`
	Units        float64 `json:"units"`
	AvgCost      float64 `json:"avg_cost"`
	CurrentPrice float64 `json:"current_price"`
	ReturnPct    float64 `json:"return_pct"`
}

type PortfolioAnalysis struct {
	Underperformers []HoldingPosition `json:"underperformers"`
	TopPerformers   []HoldingPosition `json:"top_performers"`
}

// CostBasis returns the quantity-weighted average buy price of txns and the
// accumulated quantity. Rows that are not buys or lack a quantity or price
// are ignored.
func CostBasis(txns []TxnRow) (avgCost, qty float64) {
	var cost float64
	for _, txn := range txns {
		kind, q, price := txn.At(0), txn.At(2), txn.At(3)
		if !kind.Valid || kind.Value != txnKindBuy || !q.Valid || !price.Valid {
			continue
		}
		cost += price.Value * q.Value
		qty += q.Value
	}
	if qty <= 0 {
		return 0, qty
	}
	return cost / qty, qty
}

// AnalyzePortfolio prices every equity holding against its cost basis and
// returns the five worst and five best returns. Holdings without a last
// traded price or without buy transactions are excluded.
func AnalyzePortfolio(stocks StockTransactionsResponse, nw NetWorthResponse) (PortfolioAnalysis, error) {
	txnsByISIN := make(map[string][]TxnRow, len(stocks.StockTransactions))
	for _, st := range stocks.StockTransactions {
		txnsByISIN[st.ISIN] = append(txnsByISIN[st.ISIN], st.Txns...)
	}

	var positions []HoldingPosition
	for _, h := range nw.Holdings() {
		price, ok := h.Price()
		if !ok {
			continue
		}
		avgCost, qty := CostBasis(txnsByISIN[h.ISIN])
		if qty <= 0 || avgCost == 0 {
			continue
		}
		positions = append(positions, HoldingPosition{
			ISIN:         h.ISIN,
			Issuer:       h.IssuerName,
			Units:        h.Units.Or(0),
			AvgCost:      avgCost,
			CurrentPrice: price,
			ReturnPct:    (price - avgCost) / avgCost,
		})
	}
	if len(positions) == 0 {
		return PortfolioAnalysis{}, noData("No priced equity transactions found.")
	}

	asc := append([]HoldingPosition(nil), positions...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].ReturnPct < asc[j].ReturnPct })
	desc := append([]HoldingPosition(nil), positions...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].ReturnPct > desc[j].ReturnPct })

	return PortfolioAnalysis{
		Underperformers: asc[:min(PortfolioBucketSize, len(asc))],
		TopPerformers:   desc[:min(PortfolioBucketSize, len(desc))],
	}, nil
}

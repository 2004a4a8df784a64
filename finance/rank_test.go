package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopMutualFunds_Fixture(t *testing.T) {
	nw := loadFixture[NetWorthResponse](t, "1111111111", "fetch_net_worth")

	got, err := TopMutualFunds(nw, 0)

	require.NoError(t, err)
	// The liquid fund reports no XIRR.
	assert.Equal(t, []FundPerformance{
		{Scheme: "Parag Parikh Flexi Cap Fund Direct Growth", XIRR: 18.2},
		{Scheme: "Axis Bluechip Fund Direct Growth", XIRR: 12.5},
		{Scheme: "Quant Small Cap Fund Direct Growth", XIRR: -2.1},
	}, got)
}

func TestTopMutualFunds_LimitsToN(t *testing.T) {
	nw := loadFixture[NetWorthResponse](t, "1111111111", "fetch_net_worth")

	got, err := TopMutualFunds(nw, 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 18.2, got[0].XIRR)
	assert.Equal(t, 12.5, got[1].XIRR)
}

func TestTopMutualFunds_NoData(t *testing.T) {
	_, err := TopMutualFunds(loadFixture[NetWorthResponse](t, "2222222222", "fetch_net_worth"), 5)

	assert.ErrorIs(t, err, ErrNoData)
}

func TestTopStockHoldings_Fixture(t *testing.T) {
	nw := loadFixture[NetWorthResponse](t, "1111111111", "fetch_net_worth")

	got, err := TopStockHoldings(nw, 3)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "STATE BANK OF INDIA", got[0].Issuer)
	assert.Equal(t, 80000.0, got[0].Value)
	assert.Equal(t, "INFOSYS LIMITED", got[1].Issuer)
	assert.Equal(t, 30010.0, got[1].Value)
	assert.Equal(t, "RELIANCE INDUSTRIES LTD", got[2].Issuer)
	assert.Equal(t, 25000.0, got[2].Value)
}

func TestTopStockHoldings_ExcludesUnpriced(t *testing.T) {
	nw := loadFixture[NetWorthResponse](t, "1111111111", "fetch_net_worth")

	got, err := TopStockHoldings(nw, 10)

	require.NoError(t, err)
	require.Len(t, got, 4)
	for _, h := range got {
		assert.NotEqual(t, "WIPRO LTD", h.Issuer)
	}
}

func TestTopStockHoldings_Monotonic(t *testing.T) {
	nw := loadFixture[NetWorthResponse](t, "1111111111", "fetch_net_worth")

	for _, n := range []int{1, 2, 4, 5, 10} {
		got, err := TopStockHoldings(nw, n)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(got), n)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Value, got[i].Value)
		}
	}
}

func TestTopStockHoldings_NoData(t *testing.T) {
	_, err := TopStockHoldings(loadFixture[NetWorthResponse](t, "2222222222", "fetch_net_worth"), 5)

	require.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "No priced equity holdings found.", err.Error())
}

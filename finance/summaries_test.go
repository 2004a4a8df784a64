package finance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeNetWorth_Fixture(t *testing.T) {
	nw := loadFixture[NetWorthResponse](t, "1111111111", "fetch_net_worth")

	got := SummarizeNetWorth(nw)

	assert.Equal(t, map[string]float64{
		"ASSET_TYPE_MUTUAL_FUND":       84642,
		"ASSET_TYPE_EPF":               211111,
		"ASSET_TYPE_INDIAN_SECURITIES": 150000,
		"ASSET_TYPE_SAVINGS_ACCOUNTS":  200000.5,
	}, got.Assets)
	assert.Equal(t, map[string]float64{"LIABILITY_TYPE_OTHER_LOAN": 50000}, got.Liabilities)
	assert.Equal(t, 595753.5, got.TotalNetWorth)
}

func TestSummarizeNetWorth_MissingFields(t *testing.T) {
	got := SummarizeNetWorth(NetWorthResponse{})

	assert.Empty(t, got.Assets)
	assert.Empty(t, got.Liabilities)
	assert.Zero(t, got.TotalNetWorth)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"assets": {}, "liabilities": {}, "total_net_worth": 0}`, string(b))
}

func TestCreditScore_Fixture(t *testing.T) {
	report := loadFixture[CreditReportResponse](t, "1111111111", "fetch_credit_report")

	got, err := CreditScore(report)

	require.NoError(t, err)
	require.NotNil(t, got.CreditScore)
	assert.Equal(t, 746, *got.CreditScore)
	assert.Equal(t, "H", got.ConfidenceLevel)
}

func TestCreditScore_TopLevelScoreWins(t *testing.T) {
	report := decodeString[CreditReportResponse](t, `{"creditReports": [
		{"score": {"bureauScore": 801, "bureauScoreConfidenceLevel": "M"}, "creditReportData": {"score": {"bureauScore": "650"}}},
		{"score": {"bureauScore": 300}}
	]}`)

	got, err := CreditScore(report)

	require.NoError(t, err)
	assert.Equal(t, 801, *got.CreditScore)
	assert.Equal(t, "M", got.ConfidenceLevel)
}

func TestCreditScore_NoReports(t *testing.T) {
	report := loadFixture[CreditReportResponse](t, "2222222222", "fetch_credit_report")

	_, err := CreditScore(report)

	require.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "No credit report found.", err.Error())
}

func TestCreditScore_MissingScore(t *testing.T) {
	got, err := CreditScore(decodeString[CreditReportResponse](t, `{"creditReports": [{}]}`))

	require.NoError(t, err)
	assert.Nil(t, got.CreditScore)
	assert.Empty(t, got.ConfidenceLevel)
}

func TestEPFBalance_Fixture(t *testing.T) {
	epf := loadFixture[EPFResponse](t, "1111111111", "fetch_epf_details")

	got, err := EPFBalance(epf)

	require.NoError(t, err)
	require.Len(t, got.ByEmployer, 2)
	assert.Equal(t, "ACME SOFTWARE PRIVATE LIMITED", got.ByEmployer[0].EstName)
	assert.Equal(t, Num(120000), got.ByEmployer[0].PFBalance.NetBalance)
	assert.Equal(t, Num(40000), got.ByEmployer[1].PFBalance.EmployerShare.Balance)
	require.NotNil(t, got.OverallPFBalance)
	assert.Equal(t, Num(211111), got.OverallPFBalance.CurrentPFBalance)
	assert.Equal(t, Num(45000), got.OverallPFBalance.PensionBalance)
}

func TestEPFBalance_NoAccounts(t *testing.T) {
	_, err := EPFBalance(loadFixture[EPFResponse](t, "2222222222", "fetch_epf_details"))

	require.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "No EPF details found.", err.Error())
}

func TestEPFBalance_EmptyRawDetails(t *testing.T) {
	got, err := EPFBalance(decodeString[EPFResponse](t, `{"uanAccounts": [{"rawDetails": {}}]}`))

	require.NoError(t, err)
	assert.Empty(t, got.ByEmployer)
	assert.Nil(t, got.OverallPFBalance)
}

func TestSummarizeBank_Fixture(t *testing.T) {
	bank := loadFixture[BankTransactionsResponse](t, "1111111111", "fetch_bank_transactions")

	got, err := SummarizeBank(bank)

	require.NoError(t, err)
	assert.Equal(t, 52000.0, got.TotalCredit)
	assert.Equal(t, 1700.5, got.TotalDebit)
	assert.Equal(t, 50299.5, got.NetCashFlow)

	require.Len(t, got.Banks, 2)
	assert.Equal(t, BankCashFlow{Bank: "HDFC Bank", CashFlow: CashFlow{TotalCredit: 50000, TotalDebit: 1200.5, NetCashFlow: 48799.5}}, got.Banks[0])
	assert.Equal(t, BankCashFlow{Bank: "ICICI Bank", CashFlow: CashFlow{TotalCredit: 2000, TotalDebit: 500, NetCashFlow: 1500}}, got.Banks[1])
}

func TestSummarizeBank_IgnoresOtherTypes(t *testing.T) {
	base := `{"bankTransactions": [{"bank": "SBI", "txns": [["1000", "SAL", "2024-01-01", 1, "NEFT", "1000"], ["400", "UPI", "2024-01-02", 2, "UPI", "600"]]}]}`
	noisy := `{"bankTransactions": [{"bank": "SBI", "txns": [
		["1000", "SAL", "2024-01-01", 1, "NEFT", "1000"],
		["999", "OPENING", "2024-01-01", 3, "OTHERS", "999"],
		["400", "UPI", "2024-01-02", 2, "UPI", "600"],
		["12", "INTEREST", "2024-01-03", 4, "OTHERS", "612"],
		["50", "NO TYPE", "2024-01-03"]
	]}]}`

	want, err := SummarizeBank(decodeString[BankTransactionsResponse](t, base))
	require.NoError(t, err)
	got, err := SummarizeBank(decodeString[BankTransactionsResponse](t, noisy))
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, 600.0, got.NetCashFlow)
}

func TestSummarizeBank_NoAccounts(t *testing.T) {
	_, err := SummarizeBank(loadFixture[BankTransactionsResponse](t, "2222222222", "fetch_bank_transactions"))

	assert.ErrorIs(t, err, ErrNoData)
}

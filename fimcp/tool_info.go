package fimcp

import "github.com/samber/lo"

// Remote operations served by the Fi MCP data server.
const (
	FetchNetWorth          = "fetch_net_worth"
	FetchCreditReport      = "fetch_credit_report"
	FetchEPFDetails        = "fetch_epf_details"
	FetchMFTransactions    = "fetch_mf_transactions"
	FetchBankTransactions  = "fetch_bank_transactions"
	FetchStockTransactions = "fetch_stock_transactions"
)

// ToolInfo holds the name and description of a tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RemoteTools lists every data tool the Fi server exposes, in a stable order.
func RemoteTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        FetchNetWorth,
			Description: "Calculate comprehensive net worth using ONLY actual data from accounts users connected on Fi Money including: Bank account balances, Mutual fund investment holdings, Indian Stocks investment holdings, Total US Stocks investment (If investing through Fi Money app), EPF account balances, Credit card debt and loan balances (if credit report connected), Any other assets/liabilities linked to Fi Money platform.",
		},
		{
			Name:        FetchCreditReport,
			Description: "Retrieve comprehensive credit report including scores, active loans, credit card utilization, payment history, date of birth and recent inquiries from connected credit bureaus.",
		},
		{
			Name:        FetchEPFDetails,
			Description: "Retrieve detailed EPF (Employee Provident Fund) account information including: Account balance and contributions, Employer and employee contribution history, Interest earned and credited amounts.",
		},
		{
			Name:        FetchMFTransactions,
			Description: "Retrieve detailed transaction history from accounts connected to Fi Money platform including: Mutual fund transactions.",
		},
		{
			Name:        FetchBankTransactions,
			Description: "Retrieve detailed bank transactions for each bank account connected to Fi money platform.",
		},
		{
			Name:        FetchStockTransactions,
			Description: "Retrieve detailed indian stock transactions for all connected indian stock accounts to Fi money platform.",
		},
	}
}

// IsRemoteTool reports whether name is one of RemoteTools.
func IsRemoteTool(name string) bool {
	return lo.ContainsBy(RemoteTools(), func(t ToolInfo) bool { return t.Name == name })
}

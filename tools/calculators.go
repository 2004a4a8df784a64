package tools

import (
	"context"
	"errors"

	"finsage/finance"
	"finsage/fimcp"
)

// Calculator tool names.
const (
	PortfolioAnalyzer    = "portfolio_analyzer"
	RetirementCalculator = "retirement_calculator"
	NetWorthSummary      = "net_worth_summary"
	CreditScore          = "credit_score"
	EPFBalance           = "epf_balance"
	BankSummary          = "bank_summary"
	TopMFPerformers      = "top_mf_performers"
	TopStockHoldings     = "top_stock_holdings"
)

var errNoSource = errors.New("no financial data source is configured")

var topNParam = Param{
	Name:        "top_n",
	Type:        "integer",
	Description: "How many entries to return.",
	Default:     finance.DefaultTopN,
}

type calculators struct {
	fetcher fimcp.Fetcher
}

func (c calculators) tools() []Tool {
	defaults := finance.DefaultRetirementInput()
	return []Tool{
		{
			Name:        PortfolioAnalyzer,
			Description: "Fetches your equity transactions and current prices, computes P&L for each holding, and returns the 5 underperformers and 5 top performers.",
			Run:         c.portfolio,
		},
		{
			Name:        RetirementCalculator,
			Description: "Given current age, target age, current net worth, annual savings, and expected return rate, projects your future net worth at retirement.",
			Params: []Param{
				{Name: "current_age", Type: "integer", Description: "Age today in years.", Default: float64(defaults.CurrentAge)},
				{Name: "target_age", Type: "integer", Description: "Retirement age in years.", Default: float64(defaults.TargetAge)},
				{Name: "net_worth", Type: "number", Description: "Current net worth.", Default: defaults.NetWorth},
				{Name: "annual_savings", Type: "number", Description: "Amount saved every year.", Default: defaults.AnnualSavings},
				{Name: "annual_return", Type: "number", Description: "Expected annual return as a fraction, 0.07 for 7%.", Default: defaults.AnnualReturn},
			},
			Run: c.retirement,
		},
		{
			Name:        NetWorthSummary,
			Description: "Returns a breakdown of assets, liabilities, and total net worth.",
			Run:         c.netWorth,
		},
		{
			Name:        CreditScore,
			Description: "Returns current credit score and confidence level.",
			Run:         c.creditScore,
		},
		{
			Name:        EPFBalance,
			Description: "Shows EPF contributions and net balance.",
			Run:         c.epf,
		},
		{
			Name:        BankSummary,
			Description: "Aggregates credits, debits and net cash flow from bank transactions.",
			Run:         c.bank,
		},
		{
			Name:        TopMFPerformers,
			Description: "Returns your top N mutual funds sorted by XIRR.",
			Params:      []Param{topNParam},
			Run:         c.topFunds,
		},
		{
			Name:        TopStockHoldings,
			Description: "Returns your top N equity holdings sorted by current market value.",
			Params:      []Param{topNParam},
			Run:         c.topStocks,
		},
	}
}

func fetch[T any](ctx context.Context, f fimcp.Fetcher, tool string) (T, error) {
	var zero T
	if f == nil {
		return zero, errNoSource
	}
	raw, err := f.Fetch(ctx, tool, nil)
	if err != nil {
		return zero, err
	}
	return finance.Decode[T](raw)
}

func (c calculators) portfolio(ctx context.Context, _ Args) (any, error) {
	stocks, err := fetch[finance.StockTransactionsResponse](ctx, c.fetcher, fimcp.FetchStockTransactions)
	if err != nil {
		return nil, err
	}
	nw, err := fetch[finance.NetWorthResponse](ctx, c.fetcher, fimcp.FetchNetWorth)
	if err != nil {
		return nil, err
	}
	return finance.AnalyzePortfolio(stocks, nw)
}

func (c calculators) retirement(_ context.Context, args Args) (any, error) {
	in := finance.DefaultRetirementInput()
	var err error
	if in.CurrentAge, err = args.Int("current_age", in.CurrentAge); err != nil {
		return nil, err
	}
	if in.TargetAge, err = args.Int("target_age", in.TargetAge); err != nil {
		return nil, err
	}
	if in.NetWorth, err = args.Float("net_worth", in.NetWorth); err != nil {
		return nil, err
	}
	if in.AnnualSavings, err = args.Float("annual_savings", in.AnnualSavings); err != nil {
		return nil, err
	}
	if in.AnnualReturn, err = args.Float("annual_return", in.AnnualReturn); err != nil {
		return nil, err
	}
	return finance.ProjectRetirement(in)
}

func (c calculators) netWorth(ctx context.Context, _ Args) (any, error) {
	nw, err := fetch[finance.NetWorthResponse](ctx, c.fetcher, fimcp.FetchNetWorth)
	if err != nil {
		return nil, err
	}
	return finance.SummarizeNetWorth(nw), nil
}

func (c calculators) creditScore(ctx context.Context, _ Args) (any, error) {
	report, err := fetch[finance.CreditReportResponse](ctx, c.fetcher, fimcp.FetchCreditReport)
	if err != nil {
		return nil, err
	}
	return finance.CreditScore(report)
}

func (c calculators) epf(ctx context.Context, _ Args) (any, error) {
	epf, err := fetch[finance.EPFResponse](ctx, c.fetcher, fimcp.FetchEPFDetails)
	if err != nil {
		return nil, err
	}
	return finance.EPFBalance(epf)
}

func (c calculators) bank(ctx context.Context, _ Args) (any, error) {
	bank, err := fetch[finance.BankTransactionsResponse](ctx, c.fetcher, fimcp.FetchBankTransactions)
	if err != nil {
		return nil, err
	}
	return finance.SummarizeBank(bank)
}

type topFundsResult struct {
	TopMFPerformers []finance.FundPerformance `json:"top_mf_performers"`
}

func (c calculators) topFunds(ctx context.Context, args Args) (any, error) {
	n, err := args.Int(topNParam.Name, finance.DefaultTopN)
	if err != nil {
		return nil, err
	}
	nw, err := fetch[finance.NetWorthResponse](ctx, c.fetcher, fimcp.FetchNetWorth)
	if err != nil {
		return nil, err
	}
	funds, err := finance.TopMutualFunds(nw, n)
	if err != nil {
		return nil, err
	}
	return topFundsResult{TopMFPerformers: funds}, nil
}

type topStocksResult struct {
	TopStockHoldings []finance.StockHolding `json:"top_stock_holdings"`
}

func (c calculators) topStocks(ctx context.Context, args Args) (any, error) {
	n, err := args.Int(topNParam.Name, finance.DefaultTopN)
	if err != nil {
		return nil, err
	}
	nw, err := fetch[finance.NetWorthResponse](ctx, c.fetcher, fimcp.FetchNetWorth)
	if err != nil {
		return nil, err
	}
	holdings, err := finance.TopStockHoldings(nw, n)
	if err != nil {
		return nil, err
	}
	return topStocksResult{TopStockHoldings: holdings}, nil
}

package finance

import "github.com/shopspring/decimal"

const (
	bankTxnCredit = 1
	bankTxnDebit  = 2
)

type CashFlow struct {
	TotalCredit float64 `json:"total_credit"`
	TotalDebit  float64 `json:"total_debit"`
	NetCashFlow float64 `json:"net_cash_flow"`
}

type BankCashFlow struct {
	Bank string `json:"bank"`
	CashFlow
}

type BankSummary struct {
	CashFlow
	Banks []BankCashFlow `json:"banks"`
}

type cashTally struct {
	credit, debit decimal.Decimal
}

func (t *cashTally) add(row TxnRow) {
	amount := toDecimal(row.At(0).Or(0))
	kind := row.At(3)
	if !kind.Valid {
		return
	}
	switch kind.Value {
	case bankTxnCredit:
		t.credit = t.credit.Add(amount)
	case bankTxnDebit:
		t.debit = t.debit.Add(amount)
	}
}

func (t cashTally) flow() CashFlow {
	return CashFlow{
		TotalCredit: t.credit.InexactFloat64(),
		TotalDebit:  t.debit.InexactFloat64(),
		NetCashFlow: t.credit.Sub(t.debit).InexactFloat64(),
	}
}

// SummarizeBank totals credits and debits across every bank account.
// Rows with any other type flag are ignored.
func SummarizeBank(resp BankTransactionsResponse) (BankSummary, error) {
	if len(resp.BankTransactions) == 0 {
		return BankSummary{}, noData("No bank transactions found.")
	}
	var total cashTally
	banks := make([]BankCashFlow, 0, len(resp.BankTransactions))
	for _, b := range resp.BankTransactions {
		var tally cashTally
		for _, row := range b.Txns {
			tally.add(row)
			total.add(row)
		}
		banks = append(banks, BankCashFlow{Bank: b.Bank, CashFlow: tally.flow()})
	}
	return BankSummary{CashFlow: total.flow(), Banks: banks}, nil
}

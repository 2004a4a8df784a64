package finance

import (
	"encoding/json"
	"fmt"
)

// Payload shapes returned by the Fi data server. Only the fields the
// calculators read are modelled.

type NetWorthResponse struct {
	NetWorth           NetWorth           `json:"netWorthResponse"`
	MFSchemeAnalytics  MFSchemeAnalytics  `json:"mfSchemeAnalytics"`
	AccountDetailsBulk AccountDetailsBulk `json:"accountDetailsBulkResponse"`
}

type NetWorth struct {
	AssetValues        []AttributeValue `json:"assetValues"`
	LiabilityValues    []AttributeValue `json:"liabilityValues"`
	TotalNetWorthValue *Money           `json:"totalNetWorthValue"`
}

type AttributeValue struct {
	NetWorthAttribute string `json:"netWorthAttribute"`
	Value             Money  `json:"value"`
}

type MFSchemeAnalytics struct {
	SchemeAnalytics []SchemeAnalytics `json:"schemeAnalytics"`
}

type SchemeAnalytics struct {
	SchemeDetail struct {
		NameData struct {
			LongName string `json:"longName"`
		} `json:"nameData"`
	} `json:"schemeDetail"`
	EnrichedAnalytics struct {
		Analytics struct {
			SchemeDetails struct {
				XIRR Number `json:"XIRR"`
			} `json:"schemeDetails"`
		} `json:"analytics"`
	} `json:"enrichedAnalytics"`
}

type AccountDetailsBulk struct {
	AccountDetailsMap map[string]AccountDetails `json:"accountDetailsMap"`
}

type AccountDetails struct {
	AccountType   string         `json:"accountType,omitempty"`
	EquitySummary *EquitySummary `json:"equitySummary"`
}

type EquitySummary struct {
	HoldingsInfo []EquityHolding `json:"holdingsInfo"`
}

type EquityHolding struct {
	ISIN            string `json:"isin"`
	IssuerName      string `json:"issuerName"`
	Units           Number `json:"units"`
	LastTradedPrice *Money `json:"lastTradedPrice"`
}

// Price reports the last traded price, and false when the holding has none.
func (h EquityHolding) Price() (float64, bool) {
	if h.LastTradedPrice == nil || !h.LastTradedPrice.Valid() {
		return 0, false
	}
	return h.LastTradedPrice.Float(), true
}

// TxnRow is one positional transaction row. Stock rows are
// [kind, date, quantity, price]; bank rows are
// [amount, narration, date, type, mode, balance].
type TxnRow []Number

func (r TxnRow) At(i int) Number {
	if i < 0 || i >= len(r) {
		return Number{}
	}
	return r[i]
}

type StockTransactionsResponse struct {
	StockTransactions []StockTransactions `json:"stockTransactions"`
}

type StockTransactions struct {
	ISIN string   `json:"isin"`
	Txns []TxnRow `json:"txns"`
}

type BankTransactionsResponse struct {
	BankTransactions []BankTransactions `json:"bankTransactions"`
}

type BankTransactions struct {
	Bank string   `json:"bank"`
	Txns []TxnRow `json:"txns"`
}

type CreditReportResponse struct {
	CreditReports []CreditReport `json:"creditReports"`
}

type CreditReport struct {
	Score            *BureauScore `json:"score"`
	CreditReportData *struct {
		Score *BureauScore `json:"score"`
	} `json:"creditReportData"`
}

type BureauScore struct {
	BureauScore                Number `json:"bureauScore"`
	BureauScoreConfidenceLevel string `json:"bureauScoreConfidenceLevel"`
}

type EPFResponse struct {
	UANAccounts []UANAccount `json:"uanAccounts"`
}

type UANAccount struct {
	RawDetails EPFRawDetails `json:"rawDetails"`
}

type EPFRawDetails struct {
	EstDetails       []EstablishmentDetail `json:"est_details"`
	OverallPFBalance *OverallPFBalance     `json:"overall_pf_balance"`
}

type EstablishmentDetail struct {
	EstName   string    `json:"est_name"`
	MemberID  string    `json:"member_id"`
	Office    string    `json:"office"`
	DOJEPF    string    `json:"doj_epf"`
	DOEEPF    string    `json:"doe_epf"`
	DOEEPS    string    `json:"doe_eps"`
	PFBalance PFBalance `json:"pf_balance"`
}

type PFBalance struct {
	NetBalance    Number       `json:"net_balance"`
	EmployeeShare ShareBalance `json:"employee_share"`
	EmployerShare ShareBalance `json:"employer_share"`
}

type ShareBalance struct {
	Credit  Number `json:"credit"`
	Balance Number `json:"balance"`
}

type OverallPFBalance struct {
	PensionBalance     Number       `json:"pension_balance"`
	CurrentPFBalance   Number       `json:"current_pf_balance"`
	EmployeeShareTotal ShareBalance `json:"employee_share_total"`
	EmployerShareTotal ShareBalance `json:"employer_share_total"`
}

// Decode unmarshals a fetched payload into T.
func Decode[T any](raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %T: %w", v, err)
	}
	return v, nil
}

package finance

type CreditScoreResult struct {
	CreditScore     *int   `json:"credit_score"`
	ConfidenceLevel string `json:"confidence_level"`
}

// CreditScore reads the bureau score of the first credit report.
func CreditScore(resp CreditReportResponse) (CreditScoreResult, error) {
	if len(resp.CreditReports) == 0 {
		return CreditScoreResult{}, noData("No credit report found.")
	}
	report := resp.CreditReports[0]
	score := report.Score
	if score == nil && report.CreditReportData != nil {
		score = report.CreditReportData.Score
	}

	var out CreditScoreResult
	if score == nil {
		return out, nil
	}
	if score.BureauScore.Valid {
		v := int(score.BureauScore.Value)
		out.CreditScore = &v
	}
	out.ConfidenceLevel = score.BureauScoreConfidenceLevel
	return out, nil
}

package tools

import (
	"errors"

	"finsage/fimcp"
)

// ErrorRecord is the result a tool returns instead of failing the call.
type ErrorRecord struct {
	Error    string `json:"error"`
	LoginURL string `json:"login_url,omitempty"`
}

func errorRecord(err error) ErrorRecord {
	var loginErr *fimcp.LoginRequiredError
	if errors.As(err, &loginErr) {
		msg := loginErr.Message
		if msg == "" {
			msg = "Login to Fi Money is required before your data can be read."
		}
		return ErrorRecord{Error: msg, LoginURL: loginErr.LoginURL}
	}
	return ErrorRecord{Error: err.Error()}
}

// Failed reports whether a tool result is an error record.
func Failed(result any) bool {
	_, ok := result.(ErrorRecord)
	return ok
}

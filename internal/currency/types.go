package currency

// PairRequest is the JSON body selecting a currency pair. Both codes are
// required on PUT .../pair; on session create either may be omitted.
type PairRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SessionResponse is the JSON response for session create, get, pair and swap.
type SessionResponse struct {
	ID   string `json:"id"`
	View View   `json:"view"`
}

// PressResponse is the JSON response for POST .../keys.
type PressResponse struct {
	ID      string `json:"id"`
	View    View   `json:"view"`
	Applied int    `json:"applied"`
	Ignored int    `json:"ignored"`
}

// CurrenciesResponse lists the codes the rate provider knows.
type CurrenciesResponse struct {
	Currencies []string `json:"currencies"`
}

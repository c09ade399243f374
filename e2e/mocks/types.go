package mocks

// SymbolFixture describes a listed symbol served by the mock server.
// Closes start at BasePrice on the first weekday requested and move by Step per session.
type SymbolFixture struct {
	Symbol    string
	ShortName string
	LongName  string
	Exchange  string
	Currency  string
	Sector    string
	BasePrice float64
	Step      float64
}

// YahooChartResponse is the /v8/finance/chart envelope.
type YahooChartResponse struct {
	Chart YahooChart `json:"chart"`
}

// YahooChart holds either results or an error.
type YahooChart struct {
	Result []YahooChartResult `json:"result"`
	Error  *YahooChartError   `json:"error"`
}

// YahooChartResult is one symbol's chart.
type YahooChartResult struct {
	Meta       YahooMeta       `json:"meta"`
	Timestamp  []int64         `json:"timestamp,omitempty"`
	Indicators YahooIndicators `json:"indicators"`
}

// YahooMeta is the chart metadata block.
type YahooMeta struct {
	Symbol           string `json:"symbol"`
	ShortName        string `json:"shortName,omitempty"`
	LongName         string `json:"longName,omitempty"`
	Currency         string `json:"currency"`
	ExchangeName     string `json:"exchangeName"`
	FullExchangeName string `json:"fullExchangeName"`
	GMTOffset        int64  `json:"gmtoffset"`
	InstrumentType   string `json:"instrumentType"`
}

// YahooIndicators wraps the quote arrays.
type YahooIndicators struct {
	Quote []YahooQuote `json:"quote"`
}

// YahooQuote holds nullable OHLCV arrays.
type YahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// YahooChartError is the in-band chart error.
type YahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// AlphaVantageOverview represents company overview data from Alpha Vantage.
type AlphaVantageOverview struct {
	Symbol    string `json:"Symbol"`
	Name      string `json:"Name"`
	Exchange  string `json:"Exchange"`
	Currency  string `json:"Currency"`
	Country   string `json:"Country"`
	Sector    string `json:"Sector"`
	MarketCap string `json:"MarketCapitalization"`
	PERatio   string `json:"PERatio"`
}

// AlphaVantageDailyBar is one row of TIME_SERIES_DAILY.
type AlphaVantageDailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// AlphaVantageDaily is the TIME_SERIES_DAILY document.
type AlphaVantageDaily struct {
	TimeSeries map[string]AlphaVantageDailyBar `json:"Time Series (Daily)"`
}

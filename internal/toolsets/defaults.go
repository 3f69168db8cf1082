package toolsets

import (
	"fmt"

	"fmpmcp/internal/modules"
)

var defaultDefinitions = []Definition{
	{Name: "search", Description: "Find securities by ticker, name or CIK and browse exchange listings",
		DecisionCriteria: "Use when the user names a company but not its ticker, or asks what is listed",
		Modules:          []string{modules.Search, modules.Directory}},
	{Name: "company", Description: "Company profiles, executives, market cap and peers",
		DecisionCriteria: "Use for questions about who a company is, who runs it and who it competes with",
		Modules:          []string{modules.Company}},
	{Name: "quotes", Description: "Real-time quotes, price changes and price history",
		DecisionCriteria: "Use for current or recent prices of stocks",
		Modules:          []string{modules.Quotes, modules.Charts}},
	{Name: "statements", Description: "Income statements, balance sheets, cash flows, key metrics and ratios",
		DecisionCriteria: "Use for fundamental analysis of reported financials",
		Modules:          []string{modules.Statements}},
	{Name: "charts", Description: "Historical end-of-day and intraday price bars with technical indicators",
		DecisionCriteria: "Use when the user wants price series, trends or chart-style data",
		Modules:          []string{modules.Charts, modules.TechnicalIndicators}},
	{Name: "news", Description: "Stock news, general market news and press releases",
		DecisionCriteria: "Use when the user asks what happened or why a stock moved",
		Modules:          []string{modules.News}},
	{Name: "analyst", Description: "Analyst estimates, price targets, grades and valuation models",
		DecisionCriteria: "Use for forward-looking expectations and analyst opinion",
		Modules:          []string{modules.Analyst, modules.DCF}},
	{Name: "calendar", Description: "Earnings, dividend, IPO and split calendars",
		DecisionCriteria: "Use for upcoming corporate events and dates",
		Modules:          []string{modules.Calendar}},
	{Name: "market-performance", Description: "Sector performance, gainers, losers and most active stocks",
		DecisionCriteria: "Use for a broad view of how the market is doing today",
		Modules:          []string{modules.MarketPerformance, modules.MarketHours}},
	{Name: "insider-trades", Description: "Insider transactions and statistics",
		DecisionCriteria: "Use when the user asks whether insiders are buying or selling",
		Modules:          []string{modules.InsiderTrades}},
	{Name: "institutional", Description: "Institutional ownership filings and holder performance",
		DecisionCriteria: "Use for 13F data and fund positioning",
		Modules:          []string{modules.Institutional}},
	{Name: "indexes", Description: "Index lists and constituents of major US indexes",
		DecisionCriteria: "Use when the user asks about index membership",
		Modules:          []string{modules.Indexes}},
	{Name: "market-hours", Description: "Exchange trading hours and holidays",
		DecisionCriteria: "Use when the user asks whether a market is open",
		Modules:          []string{modules.MarketHours}},
	{Name: "economics", Description: "Treasury rates, macro indicators and the economic calendar",
		DecisionCriteria: "Use for macroeconomic context",
		Modules:          []string{modules.Economics}},
	{Name: "crypto", Description: "Cryptocurrency listings and quotes",
		DecisionCriteria: "Use for digital asset prices",
		Modules:          []string{modules.Crypto}},
	{Name: "forex", Description: "Currency pairs and exchange rates",
		DecisionCriteria: "Use for foreign exchange rates",
		Modules:          []string{modules.Forex}},
	{Name: "commodities", Description: "Commodity listings and quotes",
		DecisionCriteria: "Use for gold, oil and other commodity prices",
		Modules:          []string{modules.Commodities}},
	{Name: "etf-funds", Description: "ETF and mutual fund holdings, details and sector weights",
		DecisionCriteria: "Use when the user asks what a fund holds",
		Modules:          []string{modules.ETF}},
	{Name: "esg", Description: "Environmental, social and governance scores and ratings",
		DecisionCriteria: "Use for sustainability analysis",
		Modules:          []string{modules.ESG}},
	{Name: "technical-indicators", Description: "Moving averages and momentum indicators",
		DecisionCriteria: "Use for technical analysis signals",
		Modules:          []string{modules.TechnicalIndicators}},
	{Name: "senate", Description: "Trades disclosed by members of Congress",
		DecisionCriteria: "Use when the user asks about politicians' trading",
		Modules:          []string{modules.Senate}},
	{Name: "sec-filings", Description: "8-K filings, filings by symbol and SEC profiles",
		DecisionCriteria: "Use for regulatory filings",
		Modules:          []string{modules.SECFilings}},
	{Name: "earnings", Description: "Earnings reports, call transcripts and the earnings calendar",
		DecisionCriteria: "Use for earnings results and what management said",
		Modules:          []string{modules.Transcripts, modules.Calendar}},
	{Name: "dcf", Description: "Discounted cash flow valuations",
		DecisionCriteria: "Use when the user asks what a stock is worth",
		Modules:          []string{modules.DCF}},
}

// Default returns the built-in registry for the data API catalog.
func Default() *Registry {
	r, err := NewRegistry(defaultDefinitions)
	if err != nil {
		panic(fmt.Errorf("built-in toolsets are invalid: %w", err))
	}
	return r
}

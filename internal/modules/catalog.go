package modules

// Module identifiers.
const (
	Search              = "search"
	Directory           = "directory"
	Company             = "company"
	Quotes              = "quotes"
	Statements          = "statements"
	Charts              = "charts"
	News                = "news"
	Analyst             = "analyst"
	Calendar            = "calendar"
	MarketPerformance   = "market-performance"
	InsiderTrades       = "insider-trades"
	Institutional       = "institutional"
	Indexes             = "indexes"
	MarketHours         = "market-hours"
	Economics           = "economics"
	Crypto              = "crypto"
	Forex               = "forex"
	Commodities         = "commodities"
	ETF                 = "etf"
	ESG                 = "esg"
	TechnicalIndicators = "technical-indicators"
	Senate              = "senate"
	SECFilings          = "sec-filings"
	DCF                 = "dcf"
	Transcripts         = "transcripts"
)

var definitions = []definition{
	{id: Search, operations: []operation{
		{name: "searchSymbol", title: "Search symbol", path: "search-symbol",
			description: "Search stock symbols by partial ticker across exchanges",
			params:      []param{str("query", "Partial ticker").req(), limitParam, str("exchange", "Exchange short name, e.g. NASDAQ")}},
		{name: "searchName", title: "Search company name", path: "search-name",
			description: "Search securities by company name",
			params:      []param{str("query", "Company name fragment").req(), limitParam, str("exchange", "Exchange short name")}},
		{name: "searchCIK", title: "Search CIK", path: "search-cik",
			description: "Find a company by its SEC Central Index Key",
			params:      []param{str("cik", "Central Index Key").req(), limitParam}},
	}},
	{id: Directory, operations: []operation{
		{name: "getStockList", title: "Stock list", path: "stock-list",
			description: "List every stock symbol with name and exchange"},
		{name: "getAvailableExchanges", title: "Exchanges", path: "available-exchanges",
			description: "List supported exchanges"},
		{name: "getAvailableSectors", title: "Sectors", path: "available-sectors",
			description: "List sectors used for classification"},
		{name: "screenStocks", title: "Stock screener", path: "company-screener",
			description: "Screen companies by sector, market cap and trading status",
			params: []param{str("sector", "Sector name"), num("marketCapMoreThan", "Minimum market cap"),
				flag("isEtf", "Only ETFs"), flag("isActivelyTrading", "Only actively trading securities"), limitParam}},
	}},
	{id: Company, operations: []operation{
		{name: "getCompanyProfile", title: "Company profile", path: "profile",
			description: "Company profile: description, sector, industry, CEO, market cap",
			params:      []param{symbolParam}},
		{name: "getCompanyExecutives", title: "Executives", path: "key-executives",
			description: "Key executives and their compensation",
			params:      []param{symbolParam}},
		{name: "getMarketCap", title: "Market capitalization", path: "market-capitalization",
			description: "Current market capitalization",
			params:      []param{symbolParam}},
		{name: "getStockPeers", title: "Peers", path: "stock-peers",
			description: "Companies trading in the same sector and market-cap range",
			params:      []param{symbolParam}},
	}},
	{id: Quotes, operations: []operation{
		{name: "getQuote", title: "Quote", path: "quote",
			description: "Real-time quote for a symbol",
			params:      []param{symbolParam}},
		{name: "getQuoteShort", title: "Short quote", path: "quote-short",
			description: "Price, change and volume only",
			params:      []param{symbolParam}},
		{name: "getBatchQuotes", title: "Batch quotes", path: "batch-quote",
			description: "Quotes for several comma-separated symbols",
			params:      []param{str("symbols", "Comma-separated tickers").req()}},
		{name: "getPriceChange", title: "Price change", path: "stock-price-change",
			description: "Price change over standard horizons (1D to 10Y)",
			params:      []param{symbolParam}},
	}},
	{id: Statements, operations: []operation{
		{name: "getIncomeStatement", title: "Income statement", path: "income-statement",
			description: "Income statements",
			params:      []param{symbolParam, periodParam, limitParam}},
		{name: "getBalanceSheet", title: "Balance sheet", path: "balance-sheet-statement",
			description: "Balance sheet statements",
			params:      []param{symbolParam, periodParam, limitParam}},
		{name: "getCashFlowStatement", title: "Cash flow", path: "cash-flow-statement",
			description: "Cash flow statements",
			params:      []param{symbolParam, periodParam, limitParam}},
		{name: "getKeyMetrics", title: "Key metrics", path: "key-metrics",
			description: "Key financial metrics such as EV, ROIC and per-share values",
			params:      []param{symbolParam, periodParam, limitParam}},
		{name: "getFinancialRatios", title: "Ratios", path: "ratios",
			description: "Profitability, liquidity and valuation ratios",
			params:      []param{symbolParam, periodParam, limitParam}},
	}},
	{id: Charts, operations: []operation{
		{name: "getHistoricalPriceEOD", title: "End-of-day prices", path: "historical-price-eod/full",
			description: "Daily OHLCV history",
			params:      []param{symbolParam, fromParam, toParam}},
		{name: "getIntradayChart", title: "Intraday chart", path: "historical-chart/1hour",
			description: "Hourly OHLCV bars",
			params:      []param{symbolParam, fromParam, toParam}},
	}},
	{id: News, operations: []operation{
		{name: "getStockNews", title: "Stock news", path: "news/stock",
			description: "Latest news for the given symbols",
			params:      []param{str("symbols", "Comma-separated tickers").req(), fromParam, toParam, pageParam, limitParam}},
		{name: "getGeneralNews", title: "General news", path: "news/general-latest",
			description: "Latest general market news",
			params:      []param{pageParam, limitParam}},
		{name: "getPressReleases", title: "Press releases", path: "news/press-releases",
			description: "Company press releases",
			params:      []param{str("symbols", "Comma-separated tickers").req(), pageParam, limitParam}},
	}},
	{id: Analyst, operations: []operation{
		{name: "getAnalystEstimates", title: "Analyst estimates", path: "analyst-estimates",
			description: "Consensus revenue and EPS estimates",
			params:      []param{symbolParam, periodParam.req(), pageParam, limitParam}},
		{name: "getPriceTargetConsensus", title: "Price target consensus", path: "price-target-consensus",
			description: "High, low, median and consensus price targets",
			params:      []param{symbolParam}},
		{name: "getStockGrades", title: "Grades", path: "grades",
			description: "Analyst upgrades and downgrades",
			params:      []param{symbolParam}},
	}},
	{id: Calendar, operations: []operation{
		{name: "getEarningsCalendar", title: "Earnings calendar", path: "earnings-calendar",
			description: "Upcoming and past earnings announcements",
			params:      []param{fromParam, toParam}},
		{name: "getDividendsCalendar", title: "Dividends calendar", path: "dividends-calendar",
			description: "Dividend events across companies",
			params:      []param{fromParam, toParam}},
		{name: "getIPOCalendar", title: "IPO calendar", path: "ipos-calendar",
			description: "Upcoming initial public offerings",
			params:      []param{fromParam, toParam}},
		{name: "getSplitsCalendar", title: "Splits calendar", path: "splits-calendar",
			description: "Upcoming stock splits",
			params:      []param{fromParam, toParam}},
	}},
	{id: MarketPerformance, operations: []operation{
		{name: "getSectorPerformance", title: "Sector performance", path: "sector-performance-snapshot",
			description: "Average change by sector for a date",
			params:      []param{str("date", "Snapshot date (YYYY-MM-DD)").req(), str("exchange", "Exchange short name")}},
		{name: "getBiggestGainers", title: "Biggest gainers", path: "biggest-gainers",
			description: "Stocks with the largest price increase today"},
		{name: "getBiggestLosers", title: "Biggest losers", path: "biggest-losers",
			description: "Stocks with the largest price drop today"},
		{name: "getMostActive", title: "Most active", path: "most-actives",
			description: "Stocks with the highest trading volume today"},
	}},
	{id: InsiderTrades, operations: []operation{
		{name: "getLatestInsiderTrades", title: "Latest insider trades", path: "insider-trading/latest",
			description: "Most recent insider transactions",
			params:      []param{pageParam, limitParam}},
		{name: "searchInsiderTrades", title: "Search insider trades", path: "insider-trading/search",
			description: "Insider transactions filtered by symbol",
			params:      []param{str("symbol", "Ticker symbol"), pageParam, limitParam, str("transactionType", "e.g. P-Purchase, S-Sale")}},
		{name: "getInsiderTradeStatistics", title: "Insider statistics", path: "insider-trading/statistics",
			description: "Quarterly buy/sell statistics",
			params:      []param{symbolParam}},
	}},
	{id: Institutional, operations: []operation{
		{name: "getInstitutionalFilings", title: "13F filings", path: "institutional-ownership/latest",
			description: "Latest institutional ownership filings",
			params:      []param{pageParam, limitParam}},
		{name: "getHolderPerformance", title: "Holder performance", path: "institutional-ownership/holder-performance-summary",
			description: "Performance summary for an institutional holder",
			params:      []param{str("cik", "Holder CIK").req(), pageParam}},
	}},
	{id: Indexes, operations: []operation{
		{name: "getIndexList", title: "Index list", path: "index-list",
			description: "Supported stock market indexes"},
		{name: "getSP500Constituents", title: "S&P 500 constituents", path: "sp500-constituent",
			description: "Current S&P 500 members"},
		{name: "getNasdaqConstituents", title: "Nasdaq constituents", path: "nasdaq-constituent",
			description: "Current Nasdaq-100 members"},
		{name: "getDowJonesConstituents", title: "Dow Jones constituents", path: "dowjones-constituent",
			description: "Current Dow Jones Industrial Average members"},
	}},
	{id: MarketHours, operations: []operation{
		{name: "getExchangeMarketHours", title: "Exchange hours", path: "exchange-market-hours",
			description: "Opening hours and open/closed status of an exchange",
			params:      []param{str("exchange", "Exchange short name, e.g. NYSE").req()}},
		{name: "getHolidaysByExchange", title: "Exchange holidays", path: "holidays-by-exchange",
			description: "Holidays on which an exchange is closed",
			params:      []param{str("exchange", "Exchange short name").req(), fromParam, toParam}},
	}},
	{id: Economics, operations: []operation{
		{name: "getTreasuryRates", title: "Treasury rates", path: "treasury-rates",
			description: "US Treasury yields across maturities",
			params:      []param{fromParam, toParam}},
		{name: "getEconomicIndicators", title: "Economic indicators", path: "economic-indicators",
			description: "Macro indicators such as GDP, CPI and unemployment",
			params:      []param{str("name", "Indicator name, e.g. GDP").req(), fromParam, toParam}},
		{name: "getEconomicCalendar", title: "Economic calendar", path: "economic-calendar",
			description: "Scheduled economic data releases",
			params:      []param{fromParam, toParam}},
		{name: "getMarketRiskPremium", title: "Market risk premium", path: "market-risk-premium",
			description: "Market risk premium by country"},
	}},
	{id: Crypto, operations: []operation{
		{name: "getCryptocurrencyList", title: "Cryptocurrencies", path: "cryptocurrency-list",
			description: "Supported cryptocurrencies"},
		{name: "getCryptocurrencyQuote", title: "Crypto quote", path: "quote",
			description: "Quote for a crypto pair, e.g. BTCUSD",
			params:      []param{symbolParam}},
	}},
	{id: Forex, operations: []operation{
		{name: "getForexList", title: "Currency pairs", path: "forex-list",
			description: "Supported currency pairs"},
		{name: "getForexQuote", title: "Forex quote", path: "quote",
			description: "Quote for a currency pair, e.g. EURUSD",
			params:      []param{symbolParam}},
	}},
	{id: Commodities, operations: []operation{
		{name: "getCommoditiesList", title: "Commodities", path: "commodities-list",
			description: "Supported commodities"},
		{name: "getCommodityQuote", title: "Commodity quote", path: "quote",
			description: "Quote for a commodity symbol, e.g. GCUSD",
			params:      []param{symbolParam}},
	}},
	{id: ETF, operations: []operation{
		{name: "getETFHoldings", title: "ETF holdings", path: "etf/holdings",
			description: "Holdings of an ETF or mutual fund",
			params:      []param{symbolParam}},
		{name: "getETFInfo", title: "ETF info", path: "etf/info",
			description: "Expense ratio, AUM and other fund details",
			params:      []param{symbolParam}},
		{name: "getETFSectorWeightings", title: "ETF sector weights", path: "etf/sector-weightings",
			description: "Sector breakdown of an ETF",
			params:      []param{symbolParam}},
	}},
	{id: ESG, operations: []operation{
		{name: "getESGDisclosures", title: "ESG disclosures", path: "esg-disclosures",
			description: "Environmental, social and governance scores",
			params:      []param{symbolParam}},
		{name: "getESGRatings", title: "ESG ratings", path: "esg-ratings",
			description: "ESG risk ratings",
			params:      []param{symbolParam}},
	}},
	{id: TechnicalIndicators, operations: []operation{
		{name: "getSMA", title: "Simple moving average", path: "technical-indicators/sma",
			description: "Simple moving average",
			params:      []param{symbolParam, num("periodLength", "Window length").req(), str("timeframe", "Bar size").oneOf("1min", "5min", "15min", "30min", "1hour", "4hour", "1day").req(), fromParam, toParam}},
		{name: "getEMA", title: "Exponential moving average", path: "technical-indicators/ema",
			description: "Exponential moving average",
			params:      []param{symbolParam, num("periodLength", "Window length").req(), str("timeframe", "Bar size").oneOf("1min", "5min", "15min", "30min", "1hour", "4hour", "1day").req(), fromParam, toParam}},
		{name: "getRSI", title: "Relative strength index", path: "technical-indicators/rsi",
			description: "Relative strength index",
			params:      []param{symbolParam, num("periodLength", "Window length").req(), str("timeframe", "Bar size").oneOf("1min", "5min", "15min", "30min", "1hour", "4hour", "1day").req(), fromParam, toParam}},
	}},
	{id: Senate, operations: []operation{
		{name: "getSenateTrades", title: "Senate trades", path: "senate-trades",
			description: "Stock trades disclosed by US senators",
			params:      []param{symbolParam}},
		{name: "getHouseTrades", title: "House trades", path: "house-trades",
			description: "Stock trades disclosed by US representatives",
			params:      []param{symbolParam}},
	}},
	{id: SECFilings, operations: []operation{
		{name: "getLatest8KFilings", title: "Latest 8-K filings", path: "sec-filings-8k",
			description: "Most recent 8-K filings",
			params:      []param{fromParam.req(), toParam.req(), pageParam, limitParam}},
		{name: "searchFilingsBySymbol", title: "Filings by symbol", path: "sec-filings-search/symbol",
			description: "SEC filings for a symbol in a date range",
			params:      []param{symbolParam, fromParam.req(), toParam.req(), pageParam, limitParam}},
		{name: "getSECProfile", title: "SEC profile", path: "sec-profile",
			description: "Company profile as filed with the SEC",
			params:      []param{symbolParam}},
	}},
	{id: DCF, operations: []operation{
		{name: "getDCFValuation", title: "DCF valuation", path: "discounted-cash-flow",
			description: "Discounted cash flow valuation",
			params:      []param{symbolParam}},
		{name: "getLeveredDCF", title: "Levered DCF", path: "levered-discounted-cash-flow",
			description: "Levered discounted cash flow valuation",
			params:      []param{symbolParam}},
	}},
	{id: Transcripts, operations: []operation{
		{name: "getEarningsTranscript", title: "Earnings call transcript", path: "earning-call-transcript",
			description: "Transcript of an earnings call",
			params:      []param{symbolParam, num("year", "Fiscal year").req(), num("quarter", "Fiscal quarter (1-4)").req()}},
		{name: "getTranscriptDates", title: "Transcript dates", path: "earning-call-transcript-dates",
			description: "Available earnings call transcripts for a symbol",
			params:      []param{symbolParam}},
		{name: "getEarningsReports", title: "Earnings reports", path: "earnings",
			description: "Reported versus estimated EPS and revenue",
			params:      []param{symbolParam, limitParam}},
	}},
}

// Default returns the built-in catalog of data API modules.
func Default() *Catalog {
	ctors := make(map[string]Constructor, len(definitions))
	for _, d := range definitions {
		ctors[d.id] = d.constructor()
	}
	return NewCatalog(ctors)
}

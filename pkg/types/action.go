package types

import "time"

// PriceType selects which price an Action answers when multiple are available.
type PriceType string

const (
	PriceClose    PriceType = "CLOSE"
	PriceOpen     PriceType = "OPEN"
	PriceLow      PriceType = "LOW"
	PriceHigh     PriceType = "HIGH"
	PriceTypical  PriceType = "TYPICAL" // (high+low+close)/3
	PriceWeighted PriceType = "WEIGHTED"
	PriceAsk      PriceType = "ASK"
	PriceBid      PriceType = "BID"
)

// ActionKind discriminates the Action sum type: each concrete payload type
// below reports its own kind. Go has no tagged unions, so dispatch is by
// Kind plus a type assertion on the concrete payload, mirroring the source
// system's runtime-reflection-over-subtypes (spec §9).
type ActionKind string

const (
	KindPriceBar       ActionKind = "PRICE_BAR"
	KindTradePrice     ActionKind = "TRADE_PRICE"
	KindPriceQuote     ActionKind = "PRICE_QUOTE"
	KindOrderBook      ActionKind = "ORDER_BOOK"
	KindCorporateAction ActionKind = "CORPORATE_ACTION"
	KindNewsItems      ActionKind = "NEWS_ITEMS"
)

// Action is implemented by every concrete action payload below. Price
// returns NaN for variants that carry no usable price (CorporateAction,
// NewsItems, an OrderBook missing the side it needs), per spec §7 ("a price
// of NaN is allowed as 'no data' sentinel"). Price-bearing variants answer
// a PriceType they don't carry with their default price: the close for
// PriceBar, the trade price for TradePrice, the mid for PriceQuote and
// OrderBook.
type Action interface {
	Kind() ActionKind
	AssetOf() (Asset, bool) // false for asset-less actions like NewsItems
	Price(pt PriceType) float64
}

// PriceBar is an OHLCV bar. TimeSpan is optional (historic feeds often omit
// it, spec §9), represented as a pointer.
type PriceBar struct {
	Asset    Asset
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	TimeSpan *time.Duration
}

func (p PriceBar) Kind() ActionKind        { return KindPriceBar }
func (p PriceBar) AssetOf() (Asset, bool)  { return p.Asset, true }
func (p PriceBar) Price(pt PriceType) float64 {
	switch pt {
	case PriceOpen:
		return p.Open
	case PriceHigh:
		return p.High
	case PriceLow:
		return p.Low
	case PriceTypical:
		return (p.High + p.Low + p.Close) / 3
	case PriceWeighted:
		return (p.High + p.Low + 2*p.Close) / 4
	case PriceClose, "":
		return p.Close
	default:
		return p.Close
	}
}

// TradePrice is a single executed trade print.
type TradePrice struct {
	Asset  Asset
	Price_ float64
	Volume float64
}

func (t TradePrice) Kind() ActionKind       { return KindTradePrice }
func (t TradePrice) AssetOf() (Asset, bool) { return t.Asset, true }
func (t TradePrice) Price(pt PriceType) float64 {
	return t.Price_
}

// PriceQuote is a top-of-book bid/ask quote.
type PriceQuote struct {
	Asset    Asset
	AskPrice float64
	AskSize  float64
	BidPrice float64
	BidSize  float64
}

func (q PriceQuote) Kind() ActionKind       { return KindPriceQuote }
func (q PriceQuote) AssetOf() (Asset, bool) { return q.Asset, true }
func (q PriceQuote) Price(pt PriceType) float64 {
	switch pt {
	case PriceAsk:
		return q.AskPrice
	case PriceBid:
		return q.BidPrice
	default:
		return (q.AskPrice + q.BidPrice) / 2
	}
}

// BookEntry is a single price/quantity level in an OrderBook action.
type BookEntry struct {
	Price float64
	Size  float64
}

// OrderBook is a full depth-of-book snapshot for one asset.
type OrderBook struct {
	Asset Asset
	Asks  []BookEntry // ascending by price, best ask first
	Bids  []BookEntry // descending by price, best bid first
}

func (b OrderBook) Kind() ActionKind       { return KindOrderBook }
func (b OrderBook) AssetOf() (Asset, bool) { return b.Asset, true }
func (b OrderBook) Price(pt PriceType) float64 {
	switch {
	case pt == PriceAsk && len(b.Asks) > 0:
		return b.Asks[0].Price
	case pt == PriceBid && len(b.Bids) > 0:
		return b.Bids[0].Price
	case len(b.Asks) > 0 && len(b.Bids) > 0:
		return (b.Asks[0].Price + b.Bids[0].Price) / 2
	default:
		return nan()
	}
}

// BestAsk returns the best (lowest) ask entry, if any.
func (b OrderBook) BestAsk() (BookEntry, bool) {
	if len(b.Asks) == 0 {
		return BookEntry{}, false
	}
	return b.Asks[0], true
}

// BestBid returns the best (highest) bid entry, if any.
func (b OrderBook) BestBid() (BookEntry, bool) {
	if len(b.Bids) == 0 {
		return BookEntry{}, false
	}
	return b.Bids[0], true
}

// CorporateActionKind enumerates supported corporate-action types.
type CorporateActionKind string

const (
	CorpActionDividend CorporateActionKind = "DIVIDEND"
	CorpActionSplit    CorporateActionKind = "SPLIT"
)

// CorporateAction carries a dividend/split value for an asset.
type CorporateAction struct {
	Asset Asset
	Kind_ CorporateActionKind
	Value float64
}

func (c CorporateAction) Kind() ActionKind       { return KindCorporateAction }
func (c CorporateAction) AssetOf() (Asset, bool) { return c.Asset, true }
func (c CorporateAction) Price(pt PriceType) float64 { return nan() }

// NewsItem is a single headline/body pair, optionally tagged with assets.
type NewsItem struct {
	Headline string
	Body     string
	Assets   []Asset
}

// NewsItems bundles zero or more news items; it carries no single asset.
type NewsItems struct {
	Items []NewsItem
}

func (n NewsItems) Kind() ActionKind           { return KindNewsItems }
func (n NewsItems) AssetOf() (Asset, bool)     { return Asset{}, false }
func (n NewsItems) Price(pt PriceType) float64 { return nan() }

func nan() float64 {
	var zero float64
	return zero / zero
}

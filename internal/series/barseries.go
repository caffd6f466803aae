package series

import "github.com/0xtitan6/tradecore/pkg/types"

// BarSeries holds five parallel PriceSeries, one per OHLCV field, all
// sharing the same capacity and advancing together on every Add.
type BarSeries struct {
	Open   *PriceSeries
	High   *PriceSeries
	Low    *PriceSeries
	Close  *PriceSeries
	Volume *PriceSeries
}

// NewBarSeries builds an empty BarSeries with the given fixed capacity.
func NewBarSeries(capacity int) *BarSeries {
	return &BarSeries{
		Open:   NewPriceSeries(capacity),
		High:   NewPriceSeries(capacity),
		Low:    NewPriceSeries(capacity),
		Close:  NewPriceSeries(capacity),
		Volume: NewPriceSeries(capacity),
	}
}

// Add appends one bar's OHLCV values to their respective series.
func (b *BarSeries) Add(bar types.PriceBar) {
	b.Open.Add(bar.Open)
	b.High.Add(bar.High)
	b.Low.Add(bar.Low)
	b.Close.Add(bar.Close)
	b.Volume.Add(bar.Volume)
}

// Filled reports whether every underlying series has reached capacity.
func (b *BarSeries) Filled() bool { return b.Close.Filled() }

// Len returns the number of bars currently buffered.
func (b *BarSeries) Len() int { return b.Close.Len() }

// MultiAsset maintains one BarSeries per asset, each built lazily with a
// shared capacity on first observation — the multi-market generalisation
// of a single BarSeries, mirroring the teacher's per-market map-of-state
// pattern in internal/engine (marketSlot keyed by conditionID).
type MultiAsset struct {
	capacity int
	byAsset  map[types.Asset]*BarSeries
}

// NewMultiAsset builds an empty multi-asset bar series with the given
// per-asset capacity.
func NewMultiAsset(capacity int) *MultiAsset {
	return &MultiAsset{capacity: capacity, byAsset: make(map[types.Asset]*BarSeries)}
}

// Add records bar under its own asset, creating that asset's series on
// first observation.
func (m *MultiAsset) Add(bar types.PriceBar) {
	s, ok := m.byAsset[bar.Asset]
	if !ok {
		s = NewBarSeries(m.capacity)
		m.byAsset[bar.Asset] = s
	}
	s.Add(bar)
}

// For returns the BarSeries tracked for asset, and false if none yet exists.
func (m *MultiAsset) For(asset types.Asset) (*BarSeries, bool) {
	s, ok := m.byAsset[asset]
	return s, ok
}

// Assets returns every asset currently tracked.
func (m *MultiAsset) Assets() []types.Asset {
	out := make([]types.Asset, 0, len(m.byAsset))
	for a := range m.byAsset {
		out = append(out, a)
	}
	return out
}

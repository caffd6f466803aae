package series

import (
	"testing"

	"github.com/0xtitan6/tradecore/pkg/types"
)

func TestPriceSeriesEvictsOldestAtCapacity(t *testing.T) {
	t.Parallel()

	s := NewPriceSeries(3)
	for _, v := range []float64{1, 2, 3, 4} {
		s.Add(v)
	}

	if got := s.Values(); len(got) != 3 || got[0] != 2 || got[2] != 4 {
		t.Errorf("Values() = %v, want [2 3 4]", got)
	}
}

func TestPriceSeriesFilledPredicate(t *testing.T) {
	t.Parallel()

	s := NewPriceSeries(3)
	if s.Filled() {
		t.Error("expected not filled when empty")
	}
	s.Add(1)
	s.Add(2)
	if s.Filled() {
		t.Error("expected not filled before reaching capacity")
	}
	s.Add(3)
	if !s.Filled() {
		t.Error("expected filled at capacity")
	}
	s.Add(4) // still filled, just rotates
	if !s.Filled() {
		t.Error("expected still filled after rotation")
	}
}

func TestPriceSeriesMean(t *testing.T) {
	t.Parallel()

	s := NewPriceSeries(5)
	for _, v := range []float64{2, 4, 6} {
		s.Add(v)
	}
	if got := s.Mean(); got != 4 {
		t.Errorf("Mean() = %v, want 4", got)
	}
}

func TestPriceSeriesLastOnEmpty(t *testing.T) {
	t.Parallel()

	s := NewPriceSeries(3)
	if _, ok := s.Last(); ok {
		t.Error("expected ok=false on empty series")
	}
}

var asset = types.NewAsset("AAPL", "US", "USD")

func TestBarSeriesTracksAllFields(t *testing.T) {
	t.Parallel()

	bs := NewBarSeries(2)
	bs.Add(types.PriceBar{Asset: asset, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100})
	bs.Add(types.PriceBar{Asset: asset, Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 150})

	if !bs.Filled() {
		t.Fatal("expected filled at capacity 2")
	}
	if close, _ := bs.Close.Last(); close != 2 {
		t.Errorf("Close.Last() = %v, want 2", close)
	}
	if vol, _ := bs.Volume.Last(); vol != 150 {
		t.Errorf("Volume.Last() = %v, want 150", vol)
	}
}

func TestMultiAssetCreatesPerAssetSeriesLazily(t *testing.T) {
	t.Parallel()

	m := NewMultiAsset(5)
	other := types.NewAsset("MSFT", "US", "USD")

	m.Add(types.PriceBar{Asset: asset, Close: 100})
	m.Add(types.PriceBar{Asset: other, Close: 200})

	if _, ok := m.For(asset); !ok {
		t.Error("expected series for asset")
	}
	if len(m.Assets()) != 2 {
		t.Errorf("Assets() len = %d, want 2", len(m.Assets()))
	}
}

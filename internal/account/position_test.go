package account

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/0xtitan6/tradecore/pkg/types"
)

var asset = types.NewAsset("AAPL", "US", "USD")

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestCombineOpensFromFlat(t *testing.T) {
	t.Parallel()

	pos, realized := Combine(Position{Asset: asset}, Trade{Asset: asset, Size: dec(10), Price: dec(100)})

	if !pos.Size.Equal(dec(10)) || !pos.AvgPrice.Equal(dec(100)) {
		t.Errorf("pos = %+v, want size 10 avg 100", pos)
	}
	if !realized.IsZero() {
		t.Errorf("realized = %s, want 0", realized)
	}
}

func TestCombineAccumulatesSameSign(t *testing.T) {
	t.Parallel()

	pos := Position{Asset: asset, Size: dec(10), AvgPrice: dec(100)}
	pos, realized := Combine(pos, Trade{Asset: asset, Size: dec(10), Price: dec(110)})

	if !pos.Size.Equal(dec(20)) {
		t.Errorf("size = %s, want 20", pos.Size)
	}
	wantAvg := dec(105) // (10*100 + 10*110) / 20
	if !pos.AvgPrice.Equal(wantAvg) {
		t.Errorf("avgPrice = %s, want %s", pos.AvgPrice, wantAvg)
	}
	if !realized.IsZero() {
		t.Errorf("realized = %s, want 0", realized)
	}
}

func TestCombineReducesOppositeSign(t *testing.T) {
	t.Parallel()

	pos := Position{Asset: asset, Size: dec(10), AvgPrice: dec(100)}
	pos, realized := Combine(pos, Trade{Asset: asset, Size: dec(-4), Price: dec(110)})

	if !pos.Size.Equal(dec(6)) {
		t.Errorf("size = %s, want 6", pos.Size)
	}
	if !pos.AvgPrice.Equal(dec(100)) {
		t.Errorf("avgPrice = %s, want unchanged 100", pos.AvgPrice)
	}
	wantRealized := dec(40) // 4 * (110-100)
	if !realized.Equal(wantRealized) {
		t.Errorf("realized = %s, want %s", realized, wantRealized)
	}
}

func TestCombineClosesExactly(t *testing.T) {
	t.Parallel()

	pos := Position{Asset: asset, Size: dec(10), AvgPrice: dec(100)}
	pos, realized := Combine(pos, Trade{Asset: asset, Size: dec(-10), Price: dec(120)})

	if !pos.IsZero() {
		t.Errorf("pos = %+v, want flat", pos)
	}
	wantRealized := dec(200)
	if !realized.Equal(wantRealized) {
		t.Errorf("realized = %s, want %s", realized, wantRealized)
	}
}

func TestCombineFlipsSign(t *testing.T) {
	t.Parallel()

	pos := Position{Asset: asset, Size: dec(10), AvgPrice: dec(100)}
	pos, realized := Combine(pos, Trade{Asset: asset, Size: dec(-15), Price: dec(90)})

	if !pos.Size.Equal(dec(-5)) {
		t.Errorf("size = %s, want -5", pos.Size)
	}
	if !pos.AvgPrice.Equal(dec(90)) {
		t.Errorf("avgPrice = %s, want 90 (new leg opened at trade price)", pos.AvgPrice)
	}
	wantRealized := dec(-100) // 10 * (90-100) on the closed leg
	if !realized.Equal(wantRealized) {
		t.Errorf("realized = %s, want %s", realized, wantRealized)
	}
}

func TestCombineShortPositionReduce(t *testing.T) {
	t.Parallel()

	pos := Position{Asset: asset, Size: dec(-10), AvgPrice: dec(100)}
	pos, realized := Combine(pos, Trade{Asset: asset, Size: dec(4), Price: dec(90)})

	if !pos.Size.Equal(dec(-6)) {
		t.Errorf("size = %s, want -6", pos.Size)
	}
	wantRealized := dec(40) // short covering 4 at a 10 discount = profit 40
	if !realized.Equal(wantRealized) {
		t.Errorf("realized = %s, want %s", realized, wantRealized)
	}
}

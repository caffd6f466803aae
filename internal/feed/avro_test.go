package feed

import (
	"bytes"
	"testing"
	"time"

	"github.com/0xtitan6/tradecore/pkg/types"
)

func TestAvroBarsRoundTrip(t *testing.T) {
	t.Parallel()

	bars := []types.PriceBar{
		{Asset: asset, Open: 99, High: 101, Low: 98, Close: 100, Volume: 1000},
		{Asset: asset, Open: 100, High: 103, Low: 99.5, Close: 102, Volume: 1200},
	}
	t0 := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	timestamps := []time.Time{t0, t0.Add(time.Minute)}

	var buf bytes.Buffer
	if err := WriteAvroBars(&buf, bars, timestamps); err != nil {
		t.Fatalf("WriteAvroBars: %v", err)
	}

	events, err := ReadAvroBars(&buf)
	if err != nil {
		t.Fatalf("ReadAvroBars: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events len = %d, want 2", len(events))
	}

	bar, ok := events[0].Actions[0].(types.PriceBar)
	if !ok {
		t.Fatalf("events[0].Actions[0] = %T, want PriceBar", events[0].Actions[0])
	}
	if bar.Close != 100 || bar.Asset.Symbol != asset.Symbol {
		t.Errorf("decoded bar = %+v, want close 100 symbol %s", bar, asset.Symbol)
	}
	if !events[0].Time.Equal(t0) {
		t.Errorf("decoded time = %v, want %v", events[0].Time, t0)
	}
}

func TestWriteAvroBarsRejectsMismatchedLengths(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteAvroBars(&buf, []types.PriceBar{{Asset: asset}}, nil)
	if err == nil {
		t.Fatal("expected error for mismatched bars/timestamps lengths")
	}
}

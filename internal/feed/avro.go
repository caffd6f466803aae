package feed

import (
	"fmt"
	"io"
	"time"

	"github.com/linkedin/goavro/v2"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// priceBarSchema is the Avro record schema for one serialised price bar: a
// flat record of the asset's symbol, exchange and currency, a timestamp in
// Unix nanoseconds, and the five OHLCV values. Field names match the lowerCamelCase convention Avro schemas
// in the wild use, separate from this package's exported Go identifiers.
const priceBarSchema = `{
  "type": "record",
  "name": "PriceBar",
  "fields": [
    {"name": "symbol", "type": "string"},
    {"name": "exchange", "type": "string"},
    {"name": "currency", "type": "string"},
    {"name": "timestamp", "type": "long"},
    {"name": "open", "type": "double"},
    {"name": "high", "type": "double"},
    {"name": "low", "type": "double"},
    {"name": "close", "type": "double"},
    {"name": "volume", "type": "double"}
  ]
}`

// ReadAvroBars decodes every record in an Avro Object Container File
// written with priceBarSchema into PriceBar actions bundled one per Event,
// sorted as encountered (callers replaying historic data are expected to
// have written records in timestamp order). Only price bars are read: no
// other action kinds are decoded, and no container-level metadata (such as
// a timeframe) is read. Grounded on the
// NimbleMarkets columnar-reader shape (historic market-data loaders
// reading a compact binary container into typed rows), adapted here from
// that project's DBN/Arrow path to goavro since no example repo imports
// Avro directly (see DESIGN.md).
func ReadAvroBars(r io.Reader) ([]types.Event, error) {
	ocf, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, fmt.Errorf("feed: open avro container: %w", err)
	}

	var events []types.Event
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, fmt.Errorf("feed: read avro record: %w", err)
		}
		record, ok := datum.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("feed: unexpected avro record shape %T", datum)
		}
		bar, ts, err := decodeBar(record)
		if err != nil {
			return nil, err
		}
		events = append(events, types.NewEvent(ts, bar))
	}
	return events, nil
}

func decodeBar(record map[string]interface{}) (types.PriceBar, time.Time, error) {
	symbol, _ := record["symbol"].(string)
	exchange, _ := record["exchange"].(string)
	currency, _ := record["currency"].(string)
	ts, _ := record["timestamp"].(int64)

	asset := types.NewAsset(symbol, exchange, types.Currency(currency))
	bar := types.PriceBar{
		Asset:  asset,
		Open:   toFloat(record["open"]),
		High:   toFloat(record["high"]),
		Low:    toFloat(record["low"]),
		Close:  toFloat(record["close"]),
		Volume: toFloat(record["volume"]),
	}
	return bar, time.Unix(0, ts), nil
}

func toFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

// WriteAvroBars encodes bars (paired with their timestamps) into an Avro
// Object Container File written to w, the inverse of ReadAvroBars. Used by
// tests to build fixture files without checking binary blobs into the
// repository.
func WriteAvroBars(w io.Writer, bars []types.PriceBar, timestamps []time.Time) error {
	if len(bars) != len(timestamps) {
		return fmt.Errorf("feed: WriteAvroBars: %d bars but %d timestamps", len(bars), len(timestamps))
	}
	codec, err := goavro.NewCodec(priceBarSchema)
	if err != nil {
		return fmt.Errorf("feed: build avro codec: %w", err)
	}
	writer, err := goavro.NewOCFWriter(goavro.OCFConfig{W: w, Codec: codec})
	if err != nil {
		return fmt.Errorf("feed: open avro writer: %w", err)
	}
	for i, bar := range bars {
		record := map[string]interface{}{
			"symbol":    bar.Asset.Symbol,
			"exchange":  bar.Asset.Exchange,
			"currency":  string(bar.Asset.Currency),
			"timestamp": timestamps[i].UnixNano(),
			"open":      bar.Open,
			"high":      bar.High,
			"low":       bar.Low,
			"close":     bar.Close,
			"volume":    bar.Volume,
		}
		if err := writer.Append([]interface{}{record}); err != nil {
			return fmt.Errorf("feed: append avro record: %w", err)
		}
	}
	return nil
}

// Package types defines the shared vocabulary used across the trading core —
// assets, exchanges, currencies, wallets, market actions, events, and
// timeframes.
// It has no dependency on any internal package, so it can be imported by any
// layer (feed, execution, account, strategy).
package types

import (
	"fmt"
	"strings"
)

// AssetType enumerates the kinds of instruments the core understands.
type AssetType string

const (
	AssetStock  AssetType = "STOCK"
	AssetForex  AssetType = "FOREX"
	AssetFuture AssetType = "FUTURE"
	AssetCrypto AssetType = "CRYPTO"
	AssetOption AssetType = "OPTION"
	AssetBond   AssetType = "BOND"
)

// Asset identifies a tradable instrument. It is value-typed and comparable:
// two assets are equal iff their fields are equal, and the symbol alone is
// enough to distinguish assets within a single exchange/currency pair in
// almost all practical uses.
type Asset struct {
	Symbol   string
	Type     AssetType
	Currency Currency
	Exchange string // exchange code, see Exchange registry
}

// NewAsset builds a stock asset on the given exchange, the common case.
func NewAsset(symbol string, exchange string, currency Currency) Asset {
	return Asset{Symbol: symbol, Type: AssetStock, Currency: currency, Exchange: exchange}
}

const assetFieldSep = "|"

// String renders the canonical "symbol|type|currency|exchange" encoding.
// Empty fields are preserved as empty segments so the encoding round-trips.
func (a Asset) String() string {
	return strings.Join([]string{a.Symbol, string(a.Type), string(a.Currency), a.Exchange}, assetFieldSep)
}

// ParseAsset decodes the canonical string encoding produced by Asset.String.
func ParseAsset(s string) (Asset, error) {
	parts := strings.Split(s, assetFieldSep)
	if len(parts) != 4 {
		return Asset{}, fmt.Errorf("parse asset %q: expected 4 fields, got %d", s, len(parts))
	}
	return Asset{
		Symbol:   parts[0],
		Type:     AssetType(parts[1]),
		Currency: Currency(parts[2]),
		Exchange: parts[3],
	}, nil
}

// MarshalText implements encoding.TextMarshaler so Asset can be used as a
// JSON object key (e.g. map[Asset]Position in an Account snapshot).
func (a Asset) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler, the inverse of
// MarshalText.
func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

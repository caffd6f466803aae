// Package order defines the order sum type, time-in-force policies, and the
// order lifecycle state machine (spec §3, §4.2).
package order

import (
	"time"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// TimeInForceKind discriminates the TimeInForce sum type.
type TimeInForceKind string

const (
	TIFGTC TimeInForceKind = "GTC"
	TIFGTD TimeInForceKind = "GTD"
	TIFDay TimeInForceKind = "DAY"
	TIFIOC TimeInForceKind = "IOC"
	TIFFOK TimeInForceKind = "FOK"
)

const defaultGTCMaxDays = 90

// TimeInForce is the policy determining when an unfilled order expires.
// Exactly one constructor below should be used; zero value is GTC(90).
type TimeInForce struct {
	Kind    TimeInForceKind
	MaxDays int       // GTC
	Date    time.Time // GTD
}

func GTC(maxDays int) TimeInForce {
	if maxDays <= 0 {
		maxDays = defaultGTCMaxDays
	}
	return TimeInForce{Kind: TIFGTC, MaxDays: maxDays}
}

func GTD(date time.Time) TimeInForce { return TimeInForce{Kind: TIFGTD, Date: date} }
func DAY() TimeInForce                { return TimeInForce{Kind: TIFDay} }
func IOC() TimeInForce                { return TimeInForce{Kind: TIFIOC} }
func FOK() TimeInForce                { return TimeInForce{Kind: TIFFOK} }

// Expired evaluates the TIF's expiry test per the table in spec §4.2.
// firstStep reports whether this was the order's first execution
// opportunity (the step it was accepted on); remainingPositive reports
// whether the order still has unfilled size after this step's fill attempt.
// GTC/GTD/DAY are clock-based and ignore both; IOC/FOK only ever expire on
// the first step they are given a chance to fill.
func (tif TimeInForce) Expired(now, openedAt time.Time, exchange types.Exchange, firstStep, remainingPositive bool) bool {
	switch tif.Kind {
	case TIFGTC, "":
		maxDays := tif.MaxDays
		if maxDays <= 0 {
			maxDays = defaultGTCMaxDays
		}
		return now.After(openedAt.AddDate(0, 0, maxDays))
	case TIFGTD:
		return now.After(tif.Date)
	case TIFDay:
		return !exchange.SameDay(openedAt, now)
	case TIFIOC, TIFFOK:
		return firstStep && remainingPositive
	default:
		return false
	}
}

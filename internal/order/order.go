package order

import (
	"sync/atomic"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// Kind discriminates the Order sum type: one value per concrete order kind,
// split into create orders (Market through OTO) and modify orders (Update,
// Cancel, CancelAll).
type Kind string

const (
	KindMarket     Kind = "MARKET"
	KindLimit      Kind = "LIMIT"
	KindStop       Kind = "STOP"
	KindStopLimit  Kind = "STOP_LIMIT"
	KindTrail      Kind = "TRAIL"
	KindTrailLimit Kind = "TRAIL_LIMIT"
	KindBracket    Kind = "BRACKET"
	KindOCO        Kind = "OCO"
	KindOTO        Kind = "OTO"
	KindUpdate     Kind = "UPDATE"
	KindCancel     Kind = "CANCEL"
	KindCancelAll  Kind = "CANCEL_ALL"
)

var nextID int64

// NextID hands out stable, monotonically increasing numeric order IDs,
// mirroring the teacher's pattern of a single ID source shared across all
// order construction (there, the exchange-assigned OrderID string; here, a
// process-local sequence since the core never talks to a wire API).
func NextID() int64 {
	return atomic.AddInt64(&nextID, 1)
}

// Order is the tagged hierarchy described in spec §3. Every order carries
// asset, signed size (sign = buy/sell), a stable numeric ID, an optional
// tag, and a TIF. The Kind-specific payload fields are used only for the
// matching Kind; Go has no sum-type enforcement, so executors validate
// Kind before reading payload fields (see internal/execution).
type Order struct {
	ID    int64
	Kind  Kind
	Asset types.Asset
	Size  float64 // signed: positive = buy, negative = sell
	Tag   string
	TIF   TimeInForce

	// Create payloads
	Limit        float64 // Limit, StopLimit
	Stop         float64 // Stop, StopLimit
	TrailPct     float64 // Trail, TrailLimit
	LimitOffset  float64 // TrailLimit
	Entry        *Order  // Bracket
	TakeProfit   *Order  // Bracket
	StopLoss     *Order  // Bracket
	ChildA       *Order  // OCO, OTO
	ChildB       *Order  // OCO, OTO

	// Modify payloads
	Target  int64 // Update, Cancel: target order ID
	NewSize float64
	NewLimit float64
}

// Market creates a market order.
func Market(asset types.Asset, size float64, tif TimeInForce) Order {
	return Order{ID: NextID(), Kind: KindMarket, Asset: asset, Size: size, TIF: tif}
}

// Limit creates a limit order.
func Limit(asset types.Asset, size, limit float64, tif TimeInForce) Order {
	return Order{ID: NextID(), Kind: KindLimit, Asset: asset, Size: size, Limit: limit, TIF: tif}
}

// Stop creates a stop order.
func Stop(asset types.Asset, size, stop float64, tif TimeInForce) Order {
	return Order{ID: NextID(), Kind: KindStop, Asset: asset, Size: size, Stop: stop, TIF: tif}
}

// StopLimit creates a stop-limit order.
func StopLimit(asset types.Asset, size, stop, limit float64, tif TimeInForce) Order {
	return Order{ID: NextID(), Kind: KindStopLimit, Asset: asset, Size: size, Stop: stop, Limit: limit, TIF: tif}
}

// Trail creates a trailing-stop order.
func Trail(asset types.Asset, size, trailPct float64, tif TimeInForce) Order {
	return Order{ID: NextID(), Kind: KindTrail, Asset: asset, Size: size, TrailPct: trailPct, TIF: tif}
}

// TrailLimit creates a trailing-stop-limit order.
func TrailLimit(asset types.Asset, size, trailPct, limitOffset float64, tif TimeInForce) Order {
	return Order{ID: NextID(), Kind: KindTrailLimit, Asset: asset, Size: size, TrailPct: trailPct, LimitOffset: limitOffset, TIF: tif}
}

// Bracket creates a composite entry + takeProfit + stopLoss order.
func Bracket(entry, takeProfit, stopLoss Order) Order {
	return Order{
		ID:    NextID(),
		Kind:  KindBracket,
		Asset: entry.Asset,
		Size:  entry.Size,
		Entry: &entry, TakeProfit: &takeProfit, StopLoss: &stopLoss,
	}
}

// OCO creates a one-cancels-other composite of two child orders.
func OCO(a, b Order) Order {
	return Order{ID: NextID(), Kind: KindOCO, Asset: a.Asset, ChildA: &a, ChildB: &b}
}

// OTO creates a one-triggers-other composite of two child orders.
func OTO(a, b Order) Order {
	return Order{ID: NextID(), Kind: KindOTO, Asset: a.Asset, ChildA: &a, ChildB: &b}
}

// Update modifies an existing order's size and/or limit price.
func Update(target int64, newSize, newLimit float64) Order {
	return Order{ID: NextID(), Kind: KindUpdate, Target: target, NewSize: newSize, NewLimit: newLimit}
}

// Cancel cancels a single existing order.
func Cancel(target int64) Order {
	return Order{ID: NextID(), Kind: KindCancel, Target: target}
}

// CancelAll cancels every open order.
func CancelAll() Order {
	return Order{ID: NextID(), Kind: KindCancelAll}
}

// IsModify reports whether this order is a modify-group order (Update,
// Cancel, CancelAll) rather than a create-group order.
func (o Order) IsModify() bool {
	switch o.Kind {
	case KindUpdate, KindCancel, KindCancelAll:
		return true
	default:
		return false
	}
}

// Status enumerates the order lifecycle (spec §3).
type Status string

const (
	StatusInitial   Status = "INITIAL"
	StatusAccepted  Status = "ACCEPTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
	StatusRejected  Status = "REJECTED"
)

// IsTerminal reports whether status is one of the four terminal states.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired, StatusRejected:
		return true
	default:
		return false
	}
}

// IsOpen reports whether status is INITIAL or ACCEPTED.
func (s Status) IsOpen() bool { return !s.IsTerminal() }

// State bundles an order with its current status and lifecycle timestamps.
type State struct {
	Order    Order
	Status   Status
	OpenedAt int64 // unix nanos; 0 = not yet opened
	ClosedAt int64 // unix nanos; 0 = still open
}

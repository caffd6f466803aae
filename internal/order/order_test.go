package order

import (
	"testing"
	"time"

	"github.com/0xtitan6/tradecore/pkg/types"
)

var testAsset = types.NewAsset("AAPL", "US", "USD")

func TestOrderConstructorsSetKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		o    Order
		want Kind
	}{
		{"market", Market(testAsset, 10, GTC(0)), KindMarket},
		{"limit", Limit(testAsset, 10, 100, GTC(0)), KindLimit},
		{"stop", Stop(testAsset, -10, 90, GTC(0)), KindStop},
		{"stopLimit", StopLimit(testAsset, 10, 90, 91, GTC(0)), KindStopLimit},
		{"trail", Trail(testAsset, 10, 0.05, GTC(0)), KindTrail},
		{"trailLimit", TrailLimit(testAsset, 10, 0.05, 0.01, GTC(0)), KindTrailLimit},
		{"cancel", Cancel(1), KindCancel},
		{"cancelAll", CancelAll(), KindCancelAll},
		{"update", Update(1, 5, 101), KindUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.o.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", tt.o.Kind, tt.want)
			}
		})
	}
}

func TestCompositeOrdersCarryChildren(t *testing.T) {
	t.Parallel()

	entry := Limit(testAsset, 10, 100, GTC(0))
	tp := Limit(testAsset, -10, 110, GTC(0))
	sl := Stop(testAsset, -10, 95, GTC(0))
	b := Bracket(entry, tp, sl)

	if b.Kind != KindBracket {
		t.Fatalf("Kind = %v, want BRACKET", b.Kind)
	}
	if b.Entry.ID != entry.ID || b.TakeProfit.ID != tp.ID || b.StopLoss.ID != sl.ID {
		t.Error("bracket children not preserved")
	}

	a := Limit(testAsset, 10, 100, GTC(0))
	c := Limit(testAsset, 10, 99, GTC(0))
	oco := OCO(a, c)
	if oco.Kind != KindOCO || oco.ChildA.ID != a.ID || oco.ChildB.ID != c.ID {
		t.Error("OCO children not preserved")
	}
}

func TestNextIDMonotonic(t *testing.T) {
	t.Parallel()

	a := NextID()
	b := NextID()
	if b <= a {
		t.Errorf("NextID() not monotonic: %d then %d", a, b)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	t.Parallel()

	terminal := []Status{StatusCompleted, StatusCancelled, StatusExpired, StatusRejected}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%v: want terminal", s)
		}
		if s.IsOpen() {
			t.Errorf("%v: want not open", s)
		}
	}

	open := []Status{StatusInitial, StatusAccepted}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%v: want not terminal", s)
		}
		if !s.IsOpen() {
			t.Errorf("%v: want open", s)
		}
	}
}

func TestTimeInForceExpired(t *testing.T) {
	t.Parallel()

	us, err := types.LookupExchange("US")
	if err != nil {
		t.Fatalf("LookupExchange: %v", err)
	}
	opened := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name              string
		tif               TimeInForce
		now               time.Time
		firstStep         bool
		remainingPositive bool
		want              bool
	}{
		{"gtc not expired", GTC(90), opened.AddDate(0, 0, 30), false, true, false},
		{"gtc expired", GTC(90), opened.AddDate(0, 0, 91), false, true, true},
		{"gtd not yet", GTD(opened.AddDate(0, 0, 10)), opened.AddDate(0, 0, 5), false, true, false},
		{"gtd expired", GTD(opened.AddDate(0, 0, 10)), opened.AddDate(0, 0, 11), false, true, true},
		{"day same day", DAY(), opened.Add(2 * time.Hour), false, true, false},
		{"day next day", DAY(), opened.AddDate(0, 0, 1), false, true, true},
		{"ioc filled on first step", IOC(), opened, true, false, false},
		{"ioc partial on first step expires", IOC(), opened, true, true, true},
		{"ioc later step never re-expires", IOC(), opened, false, true, false},
		{"fok partial on first step expires", FOK(), opened, true, true, true},
		{"fok full fill on first step", FOK(), opened, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tif.Expired(tt.now, opened, us, tt.firstStep, tt.remainingPositive)
			if got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

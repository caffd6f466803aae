// Package registry loads the process-wide asset/exchange definitions a run
// needs at startup (spec §9's "global mutable registries... initialise
// once at startup; after initialisation treat them as immutable
// references"). Grounded on the teacher's internal/store atomic-file
// idiom, repurposed here from per-market position persistence (out of
// core scope — see DESIGN.md) to a one-shot startup load of static
// reference data.
package registry

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/0xtitan6/tradecore/pkg/types"
)

// File is the on-disk shape a registry YAML file is decoded into.
type File struct {
	Exchanges []ExchangeDef `yaml:"exchanges"`
	Assets    []AssetDef    `yaml:"assets"`
}

// ExchangeDef describes one exchange entry in the registry file.
type ExchangeDef struct {
	Code      string `yaml:"code"`
	Zone      string `yaml:"zone"`       // IANA timezone name, e.g. "America/New_York"
	OpenTime  string `yaml:"open_time"`  // e.g. "09:30"
	CloseTime string `yaml:"close_time"` // e.g. "16:00"
}

// AssetDef describes one asset entry in the registry file.
type AssetDef struct {
	Symbol   string `yaml:"symbol"`
	Type     string `yaml:"type"`
	Currency string `yaml:"currency"`
	Exchange string `yaml:"exchange"`
}

// Load reads a registry YAML file from path, registers every exchange it
// contains into the process-wide exchange registry (types.RegisterExchange),
// and returns the assets it lists; assets are not kept in any process-wide
// table. Intended to be called once, during startup,
// before any run loop begins.
func Load(path string) ([]types.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}

	for _, ex := range f.Exchanges {
		loc, err := time.LoadLocation(ex.Zone)
		if err != nil {
			return nil, fmt.Errorf("registry: exchange %s: load zone %q: %w", ex.Code, ex.Zone, err)
		}
		open, err := parseClock(ex.OpenTime)
		if err != nil {
			return nil, fmt.Errorf("registry: exchange %s: open_time: %w", ex.Code, err)
		}
		closeT, err := parseClock(ex.CloseTime)
		if err != nil {
			return nil, fmt.Errorf("registry: exchange %s: close_time: %w", ex.Code, err)
		}
		types.RegisterExchange(types.Exchange{Code: ex.Code, Zone: loc, OpenTime: open, CloseTime: closeT})
	}

	assets := make([]types.Asset, 0, len(f.Assets))
	for _, a := range f.Assets {
		assets = append(assets, types.Asset{
			Symbol:   a.Symbol,
			Type:     types.AssetType(a.Type),
			Currency: types.Currency(a.Currency),
			Exchange: a.Exchange,
		})
	}
	return assets, nil
}

// parseClock parses an "HH:MM" wall-clock string into a Duration offset
// from midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Save writes f to path atomically (write to .tmp, then rename), the same
// crash-safe pattern the teacher's store.go uses for position files —
// here applied to persisting an edited registry back to disk instead of
// run-time position state.
func Save(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("registry: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("registry: write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

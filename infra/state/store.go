// Package state persists planner state and reads the shared spot price feed
// as YAML blobs in a directory. Each blob is addressed by a key; the price
// feed blob is written by a separate exporter and read-only here.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hweijer/tapplan/core/logger"
	"github.com/hweijer/tapplan/core/model"
	infralogger "github.com/hweijer/tapplan/infra/logger"
)

// Store reads and writes YAML blobs under a single directory.
type Store struct {
	dir string
	log logger.Logger
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, log: infralogger.New("state-store")}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".yaml")
}

// LoadState reads the planner state blob. A missing or unreadable blob is
// not an error: it yields the empty state, meaning desinfection is due and
// no prior plan exists.
func (s *Store) LoadState(key string) model.PlannerState {
	var st model.PlannerState
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		s.log.Infof("no prior state at %s, assuming empty state", s.path(key))
		return st
	}
	if err := yaml.Unmarshal(b, &st); err != nil {
		s.log.Warnf("unparseable state blob %s, assuming empty state: %v", s.path(key), err)
		return model.PlannerState{}
	}
	return st
}

// StoreState overwrites the planner state blob. The write goes through a
// temp file and rename so a crash never leaves a truncated blob behind.
func (s *Store) StoreState(key string, st model.PlannerState) error {
	b, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	s.log.Infof("stored state at %s", s.path(key))
	return nil
}

// spotPrice is the wire format the price-feed exporter writes. The realized
// price per kWh is the sum of the market price and all surcharge
// components.
type spotPrice struct {
	From           time.Time `yaml:"from"`
	Till           time.Time `yaml:"till"`
	MarketPrice    float64   `yaml:"marketPrice"`
	MarketPriceTax float64   `yaml:"marketPriceTax"`
	SourcingMarkup float64   `yaml:"sourcingMarkup"`
	EnergyTaxPrice float64   `yaml:"energyTaxPrice"`
}

// LoadSpotPrices reads the price forecast blob under the given key and
// returns it as an ordered forecast.
func (s *Store) LoadSpotPrices(key string) (model.Forecast, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("read spot prices %s: %w", s.path(key), err)
	}
	var prices []spotPrice
	if err := yaml.Unmarshal(b, &prices); err != nil {
		return nil, fmt.Errorf("parse spot prices %s: %w", s.path(key), err)
	}
	forecast := make(model.Forecast, 0, len(prices))
	for _, p := range prices {
		forecast = append(forecast, model.PriceSample{
			Start: p.From,
			End:   p.Till,
			Price: p.MarketPrice + p.MarketPriceTax + p.SourcingMarkup + p.EnergyTaxPrice,
		})
	}
	sort.Slice(forecast, func(i, j int) bool { return forecast[i].Start.Before(forecast[j].Start) })
	if err := forecast.Validate(); err != nil {
		return nil, fmt.Errorf("spot prices %s: %w", s.path(key), err)
	}
	return forecast, nil
}

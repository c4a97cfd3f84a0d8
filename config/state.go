package config

// StateConfig locates the blob store the planner shares with the price-feed
// exporter.
type StateConfig struct {
	// Dir is the directory holding the YAML blobs.
	Dir string `json:"dir"`
	// StateKey is the blob key of the planner's own state.
	StateKey string `json:"stateKey"`
	// SpotPricesKey is the blob key the price-feed exporter writes.
	SpotPricesKey string `json:"spotPricesKey"`
}

// SetDefaults applies sane defaults.
func (c *StateConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "/configs"
	}
	if c.StateKey == "" {
		c.StateKey = "last-state"
	}
	if c.SpotPricesKey == "" {
		c.SpotPricesKey = "spot-prices"
	}
}

// Validate checks mandatory fields.
func (c StateConfig) Validate() error {
	if c.Dir == "" {
		return errf("state dir is required")
	}
	return nil
}

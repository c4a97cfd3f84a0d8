package luxtronik

import (
	"context"
	"fmt"
	"time"

	"github.com/hweijer/tapplan/core/logger"
	"github.com/hweijer/tapplan/core/model"
	"github.com/hweijer/tapplan/core/planner"
	infralogger "github.com/hweijer/tapplan/infra/logger"
)

// Default menu paths of the Dutch firmware.
const (
	defaultHeatingTimerPage      = "Klokprogramma > Warmwater > Week"
	defaultDesinfectionTimerPage = "Klokprogramma > Thermische desinfectie > Week"
	defaultTemperaturePage       = "Instelling > Temperaturen"
	defaultTemperatureItem       = "Tapwater ingesteld"
)

// timerSlots is the number of timer entries per page; the planner programs
// the first and clears the rest.
const timerSlots = 5

// ExecutorConfig extends the connection config with the menu locations the
// executor programs.
type ExecutorConfig struct {
	Config                `json:",squash"`
	HeatingTimerPage      string `json:"heating_timer_page"`
	DesinfectionTimerPage string `json:"desinfection_timer_page"`
	TemperaturePage       string `json:"temperature_page"`
	TemperatureItem       string `json:"temperature_item"`
}

// SetDefaults applies the Dutch firmware menu paths.
func (c *ExecutorConfig) SetDefaults() {
	c.Config.SetDefaults()
	if c.HeatingTimerPage == "" {
		c.HeatingTimerPage = defaultHeatingTimerPage
	}
	if c.DesinfectionTimerPage == "" {
		c.DesinfectionTimerPage = defaultDesinfectionTimerPage
	}
	if c.TemperaturePage == "" {
		c.TemperaturePage = defaultTemperaturePage
	}
	if c.TemperatureItem == "" {
		c.TemperatureItem = defaultTemperatureItem
	}
}

// Executor programs the heatpump's tap-water timers from a plan. Absolute
// session instants are converted to the heatpump's operating timezone only
// here, at the device boundary.
type Executor struct {
	cfg         ExecutorConfig
	desiredTemp float64
	deviceZone  *time.Location
	log         logger.Logger
}

// NewExecutor returns an executor for the given device.
func NewExecutor(cfg ExecutorConfig, desiredTapWaterTemperature float64, deviceZone *time.Location) *Executor {
	return &Executor{
		cfg:         cfg,
		desiredTemp: desiredTapWaterTemperature,
		deviceZone:  deviceZone,
		log:         infralogger.New("luxtronik-executor"),
	}
}

// Execute implements planner.Executor. Each scheduled session is programmed
// independently and reported with its own success flag; a failing session
// does not abort the remaining ones.
func (e *Executor) Execute(ctx context.Context, plan *model.Plan) ([]planner.SessionResult, error) {
	client, nav, err := Dial(ctx, e.cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("connect heatpump: %w", err)
	}
	defer client.Close()

	if err := e.setDesiredTemperature(ctx, client, nav); err != nil {
		return nil, fmt.Errorf("set tap water temperature: %w", err)
	}

	results := make([]planner.SessionResult, 0, len(plan.Sessions))
	for _, session := range plan.Sessions {
		result := planner.SessionResult{Kind: session.Kind, OK: true}
		if err := e.programSession(ctx, client, nav, session); err != nil {
			e.log.Errorf("program %s session: %v", session.Kind, err)
			result.OK = false
			result.Err = err.Error()
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *Executor) setDesiredTemperature(ctx context.Context, client *Client, nav *Navigation) error {
	pageID, err := nav.ItemID(e.cfg.TemperaturePage)
	if err != nil {
		return err
	}
	page, err := client.Get(ctx, pageID)
	if err != nil {
		return err
	}
	item, ok := page.Item(e.cfg.TemperatureItem)
	if !ok {
		return fmt.Errorf("item %q not found on page %q", e.cfg.TemperatureItem, e.cfg.TemperaturePage)
	}
	// The device stores temperatures in tenths of a degree.
	return client.Set(ctx, item.ID, int(e.desiredTemp*10))
}

// programSession writes the session window into the first timer slot of the
// kind's timer page and clears the remaining slots, so exactly one window is
// active until the next planning run reprograms it.
func (e *Executor) programSession(ctx context.Context, client *Client, nav *Navigation, session model.ScheduledSession) error {
	path := e.cfg.HeatingTimerPage
	if session.Kind == model.SessionDesinfection {
		path = e.cfg.DesinfectionTimerPage
	}
	pageID, err := nav.ItemID(path)
	if err != nil {
		return err
	}
	page, err := client.Get(ctx, pageID)
	if err != nil {
		return err
	}

	from := clockOf(session.Start.In(e.deviceZone))
	till := clockOf(session.End.In(e.deviceZone))
	for slot := 1; slot <= timerSlots; slot++ {
		item, ok := page.Item(fmt.Sprintf("%d)", slot))
		if !ok {
			return fmt.Errorf("timer slot %d) not found on page %q", slot, path)
		}
		raw := 0
		if slot == 1 {
			raw = encodeTimer(from, till)
		}
		if err := client.Set(ctx, item.ID, raw); err != nil {
			return err
		}
	}
	if err := client.Save(ctx); err != nil {
		return err
	}
	e.log.Infof("programmed %s timer %s - %s (%s)", session.Kind, from, till, e.deviceZone)
	return nil
}

func clockOf(t time.Time) model.ClockTime {
	return model.ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

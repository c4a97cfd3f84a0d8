package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const validConfig = `
dryRun: true
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  sessionDurationInSeconds: 5400
  jitterMaxMinutes: 15
  plannableLocalTimeSlots:
    monday:
      - from: "10:00:00"
        till: "00:00:00"
  desinfectionLocalTimeSlots:
    sunday:
      - from: "00:00:00"
        till: "06:00:00"
        ifPriceBelow: 0.12
state:
  dir: /tmp/tapplan-state
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.True(t, cfg.DryRun)
	require.Equal(t, 5400, cfg.Planner.SessionDurationInSeconds)
	require.Equal(t, "/tmp/tapplan-state", cfg.State.Dir)
	// Defaults fill the rest in.
	require.Equal(t, "consecutive", cfg.Planner.PlanningStrategy)
	require.Equal(t, 12, cfg.Planner.MaximumHoursToPlanAhead)
	require.Equal(t, "last-state", cfg.State.StateKey)
	require.Equal(t, "spot-prices", cfg.State.SpotPricesKey)

	plannerCfg, deviceZone, err := cfg.Planner.Compile()
	require.NoError(t, err)
	require.Equal(t, "Europe/Amsterdam", deviceZone.String())
	require.Equal(t, 90*time.Minute, plannerCfg.SessionDuration)
	require.Len(t, plannerCfg.PlannableSlots[time.Monday], 1)
	require.Len(t, plannerCfg.DesinfectionSlots[time.Sunday], 1)
	ceiling := plannerCfg.DesinfectionSlots[time.Sunday][0].IfPriceBelow
	require.NotNil(t, ceiling)
	require.Equal(t, 0.12, *ceiling)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TP_PLANNER__SESSIONDURATIONINSECONDS", "3600")
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	require.Equal(t, 3600, cfg.Planner.SessionDurationInSeconds)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	requireConfigError(t, err)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("config.toml")
	requireConfigError(t, err)
}

func TestLoadRejectsBrokenPlannerSections(t *testing.T) {
	cases := map[string]string{
		"unknown weekday": `
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  plannableLocalTimeSlots:
    funday:
      - {from: "10:00:00", till: "12:00:00"}
`,
		"unknown timezone": `
planner:
  localTimeZone: Mars/Olympus
  heatpumpTimeZone: Europe/Amsterdam
`,
		"unparseable time": `
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  plannableLocalTimeSlots:
    monday:
      - {from: "ten", till: "12:00:00"}
`,
		"zero-length slot": `
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  plannableLocalTimeSlots:
    monday:
      - {from: "10:00:00", till: "10:00:00"}
`,
		"overlapping slots": `
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  plannableLocalTimeSlots:
    monday:
      - {from: "10:00:00", till: "12:00:00"}
      - {from: "11:00:00", till: "13:00:00"}
`,
		"midnight spill collision": `
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  plannableLocalTimeSlots:
    monday:
      - {from: "22:00:00", till: "03:00:00"}
    tuesday:
      - {from: "02:00:00", till: "05:00:00"}
`,
		"bad blacklist scope": `
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  worstHeatingTimesScope: everywhere
`,
		"bad fraction": `
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  worstHeatingTimesFraction: 1.5
`,
		"ceiling on heating slot": `
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  plannableLocalTimeSlots:
    monday:
      - {from: "10:00:00", till: "12:00:00", ifPriceBelow: 0.1}
`,
		"unknown strategy": `
planner:
  localTimeZone: Europe/Amsterdam
  heatpumpTimeZone: Europe/Amsterdam
  planningStrategy: scattered
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "dryRun: true\n"+doc))
			requireConfigError(t, err)
		})
	}
}

func TestLoadRequiresHeatpumpUnlessDryRun(t *testing.T) {
	// No heatpump host configured: fine in dry-run, fatal otherwise.
	_, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	wet := "dryRun: false" + validConfig[len("\ndryRun: true"):]
	_, err = Load(writeConfig(t, wet))
	requireConfigError(t, err)
}

func TestLoadRejectsEnabledMQTTWithoutBroker(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+`
mqtt:
  enabled: true
`))
	requireConfigError(t, err)
}

func requireConfigError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr), "expected a configuration error, got %v", err)
}

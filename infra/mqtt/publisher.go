// Package mqtt announces finished plans on an MQTT broker so home
// automation can display the upcoming sessions. Publishing is optional and
// best-effort; a failed announcement never fails the planning run.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/hweijer/tapplan/core/logger"
	"github.com/hweijer/tapplan/core/model"
	infralogger "github.com/hweijer/tapplan/infra/logger"
)

// Config defines the connection parameters for the announcement publisher.
type Config struct {
	Enabled        bool   `json:"enabled"`
	Broker         string `json:"broker"`
	ClientID       string `json:"client_id"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Topic          string `json:"topic"`
	QoS            byte   `json:"qos"`
	Retain         bool   `json:"retain"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "tapplan-" + uuid.NewString()[:8]
	}
	if c.Topic == "" {
		c.Topic = "tapplan/plan"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("mqtt broker is required when mqtt is enabled")
	}
	return nil
}

// PlanPublisher publishes the plan as a retained JSON message.
type PlanPublisher struct {
	cfg Config
	log logger.Logger
}

// NewPlanPublisher returns a publisher; it connects lazily on Publish.
func NewPlanPublisher(cfg Config) *PlanPublisher {
	return &PlanPublisher{cfg: cfg, log: infralogger.New("mqtt-publisher")}
}

// Publish announces the plan. A disabled publisher silently does nothing.
func (p *PlanPublisher) Publish(plan *model.Plan) error {
	if !p.cfg.Enabled {
		return nil
	}
	timeout := time.Duration(p.cfg.TimeoutSeconds) * time.Second

	opts := paho.NewClientOptions().
		AddBroker(p.cfg.Broker).
		SetClientID(p.cfg.ClientID).
		SetUsername(p.cfg.Username).
		SetPassword(p.cfg.Password).
		SetConnectTimeout(timeout)
	client := paho.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(timeout) || token.Error() != nil {
		return fmt.Errorf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if token := client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload); !token.WaitTimeout(timeout) || token.Error() != nil {
		return fmt.Errorf("mqtt publish: %v", token.Error())
	}
	p.log.Infof("announced plan %s on %s", plan.ID, p.cfg.Topic)
	return nil
}

package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
)

const topicPattern = "/fieldops/agent/+/location"

type locationStore interface {
	Remember(agentID, customerID string, reading domain.LocationReading)
}

type gpsLog interface {
	Insert(ctx context.Context, agentID, customerID string, reading domain.LocationReading) error
}

type fixMessage struct {
	AgentID    string  `json:"agent_id"`
	CustomerID string  `json:"customer_id,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Accuracy   float64 `json:"accuracy"`
	Timestamp  int64   `json:"timestamp"`
}

// LocationSubscriber ingests agent GPS fixes from MQTT into the
// offline-fallback cache and the postgres audit log.
type LocationSubscriber struct {
	client  mqtt.Client
	store   locationStore
	logRepo gpsLog
}

func NewLocationSubscriber(client mqtt.Client, store locationStore, logRepo gpsLog) *LocationSubscriber {
	return &LocationSubscriber{
		client:  client,
		store:   store,
		logRepo: logRepo,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw fixMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid location message: %v", err)
		return
	}

	if err := validateFixMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	reading := domain.LocationReading{
		Coordinate:     domain.Coordinate{Lat: raw.Latitude, Lon: raw.Longitude},
		AccuracyMeters: raw.Accuracy,
		CapturedAt:     time.Unix(raw.Timestamp, 0),
	}

	s.store.Remember(raw.AgentID, raw.CustomerID, reading)

	if err := s.logRepo.Insert(context.Background(), raw.AgentID, raw.CustomerID, reading); err != nil {
		log.Printf("gps log insert error: %v", err)
	}
}

func validateFixMessage(msg *fixMessage) error {
	if msg.AgentID == "" {
		return fmt.Errorf("agent_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Accuracy < 0 {
		return fmt.Errorf("accuracy: must not be negative")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}

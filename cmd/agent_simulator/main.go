package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fixMessage struct {
	AgentID    string  `json:"agent_id"`
	CustomerID string  `json:"customer_id,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Accuracy   float64 `json:"accuracy"`
	Timestamp  int64   `json:"timestamp"`
}

// Lagos test customer the simulated agents walk around.
const (
	customerID  = "CUST-0001"
	customerLat = 6.5244
	customerLon = 3.3792
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("agent-mock-simulator")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	agentPool := make([]string, 5)
	for i := range agentPool {
		agentPool[i] = fmt.Sprintf("AGENT-%04d", rand.Intn(10000))
	}

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)
	log.Printf("agent pool: %v", agentPool)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		agentID := agentPool[rand.Intn(len(agentPool))]

		msg := fixMessage{
			AgentID: agentID,
			// ~50m drift around the customer's registered position
			Latitude:  customerLat + (rand.Float64()-0.5)*0.0005,
			Longitude: customerLon + (rand.Float64()-0.5)*0.0005,
			Accuracy:  2 + rand.Float64()*60,
			Timestamp: time.Now().Unix(),
		}
		// 30% of fixes arrive tagged to the customer being visited
		if rand.Float64() < 0.3 {
			msg.CustomerID = customerID
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/fieldops/agent/%s/location", agentID)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}

// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type FactorScore struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

type AlertPayload struct {
	Type            string                 `json:"type"`
	TouristID       uuid.UUID              `json:"tourist_id"`
	Severity        string                 `json:"severity"`
	Score           float64                `json:"score"`
	RiskLevel       string                 `json:"risk_level"`
	Coordinate      Coordinate             `json:"coordinate"`
	Factors         map[string]FactorScore `json:"factors"`
	Recommendations []string               `json:"recommendations"`
	Timestamp       time.Time              `json:"timestamp"`
}

type Envelope struct {
	Origin  string       `json:"origin"`
	Payload AlertPayload `json:"payload"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	channel := flag.String("channel", "authority", "Subscriber channel")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Тестовый алерт (Barcelona, Gràcia)
	payload := AlertPayload{
		Type:      "safety_alert",
		TouristID: uuid.New(),
		Severity:  "critical",
		Score:     29.0,
		RiskLevel: "critical",
		Coordinate: Coordinate{
			Lat: 41.4027042,
			Lon: 2.1599563,
		},
		Recommendations: []string{
			"Leave the area immediately and contact local authorities",
		},
		Timestamp: time.Now(),
	}

	// Origin чужого экземпляра: relay-воркер обязан доставить сообщение
	// локальным websocket-подписчикам
	envelope := Envelope{
		Origin:  "test-publisher",
		Payload: payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		log.Fatalf("Failed to marshal envelope: %v", err)
	}

	topic := "safety:alerts:" + *channel
	receivers, err := client.Publish(ctx, topic, data).Result()
	if err != nil {
		log.Fatalf("Failed to publish envelope: %v", err)
	}

	fmt.Printf("✅ Alert published successfully!\n")
	fmt.Printf("   Topic: %s\n", topic)
	fmt.Printf("   Subscribed instances: %d\n", receivers)
	fmt.Printf("   Tourist ID: %s\n", payload.TouristID)
	fmt.Printf("   Severity: %s (score %.2f)\n", payload.Severity, payload.Score)
	fmt.Printf("   Coordinates: %.6f, %.6f\n", payload.Coordinate.Lat, payload.Coordinate.Lon)

	if receivers == 0 {
		fmt.Printf("\n⚠️  No service instance is subscribed to the topic.\n")
		fmt.Printf("   Start the service with BROADCAST_BROKER_ENABLED=true and connect\n")
		fmt.Printf("   a websocket client to /ws/alerts?channel=%s to see the delivery.\n", *channel)
	}
}

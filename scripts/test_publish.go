//go:build ignore

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

type StationUpdateEvent struct {
	Type       string    `json:"type"`
	StationID  string    `json:"station_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publishes a test station update event to the sync stream.
//
//	go run scripts/test_publish.go -type updated -station st-123
func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	eventType := flag.String("type", "updated", "event type")
	stationID := flag.String("station", "", "station id (random when empty)")
	flag.Parse()

	if *stationID == "" {
		*stationID = "st-" + uuid.NewString()
	}

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	event := StationUpdateEvent{
		Type:       *eventType,
		StationID:  *stationID,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("marshal event: %v", err)
	}

	id, err := client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: "stream:stations:updates",
		Values: map[string]interface{}{"data": string(payload)},
	}).Result()
	if err != nil {
		log.Fatalf("publish event: %v", err)
	}

	fmt.Printf("published %s for %s as message %s\n", *eventType, *stationID, id)
}

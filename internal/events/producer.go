// Package events publishes seat-workflow audit events to Kafka. The feed is
// advisory; publishing failures are logged and never fail the workflow.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"backoffice/internal/utils"
)

const (
	TypeSeatAssigned    = "seat.assigned"
	TypeSeatReleased    = "seat.released"
	TypeVehicleDeparted = "vehicle.departed"
)

type SeatEvent struct {
	Type        string    `json:"type"`
	VehicleID   int64     `json:"vehicleId"`
	SeatNumbers []int     `json:"seatNumbers,omitempty"`
	Occupant    string    `json:"occupant,omitempty"`
	OperatorID  int64     `json:"operatorId"`
	At          time.Time `json:"at"`
}

type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds the audit producer; with no brokers configured the
// producer is a no-op so the gateway runs without Kafka.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 {
		return &Producer{}
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish writes one event keyed by vehicle id, fire-and-forget.
func (p *Producer) Publish(ctx context.Context, ev SeatEvent) {
	if p == nil || p.writer == nil {
		return
	}
	ev.At = time.Now().UTC()
	value, err := json.Marshal(ev)
	if err != nil {
		utils.LogEvent("", "events", "encode_failed", err.Error())
		return
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.VehicleID, 10)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		utils.LogEvent("", "events", "publish_failed", fmt.Sprintf("type=%s err=%v", ev.Type, err))
	}
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// events.go
//
// K9 management data service: dogs, trainers and training journals
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of k9-management.
// k9-management is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// k9-management is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with k9-management.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// JournalReviewedEvent is published after a journal is approved or rejected
type JournalReviewedEvent struct {
	EventID         string    `json:"event_id"`
	JournalID       uint64    `json:"journal_id"`
	DogID           uint64    `json:"dog_id"`
	DogName         string    `json:"dog_name"`
	TrainerID       uint64    `json:"trainer_id"`
	ApproverID      uint64    `json:"approver_id"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	JournalDate     string    `json:"journal_date"`
	ReviewedAt      time.Time `json:"reviewed_at"`
}

// NewJournalReviewedEvent describes the review recorded on j
func NewJournalReviewedEvent(j *JournalView) JournalReviewedEvent {
	event := JournalReviewedEvent{
		EventID:     uuid.NewString(),
		JournalID:   j.ID,
		DogID:       j.DogID,
		DogName:     j.DogName,
		TrainerID:   j.TrainerID,
		Status:      string(j.ApprovalStatus),
		JournalDate: j.JournalDate,
		ReviewedAt:  time.Now().UTC(),
	}
	if j.ApprovedBy != nil {
		event.ApproverID = *j.ApprovedBy
	}
	if j.ApprovedAt != nil {
		event.ReviewedAt = *j.ApprovedAt
	}
	if j.RejectionReason != nil {
		event.RejectionReason = *j.RejectionReason
	}
	return event
}

// EventPublisher delivers journal review events
type EventPublisher interface {
	PublishJournalReviewed(ctx context.Context, event JournalReviewedEvent) error
}

// NopPublisher drops events when no broker is configured
type NopPublisher struct{}

func (NopPublisher) PublishJournalReviewed(context.Context, JournalReviewedEvent) error {
	return nil
}

// AMQPPublisher publishes events to a durable RabbitMQ queue.
// Errors are logged and returned so callers may ignore them.
type AMQPPublisher struct {
	URL   string
	Queue string
}

// NewEventPublisher returns an AMQPPublisher for url, or a NopPublisher when url is empty
func NewEventPublisher(url, queue string) EventPublisher {
	if url == "" {
		return NopPublisher{}
	}
	if queue == "" {
		queue = "journal_reviewed"
	}
	return &AMQPPublisher{URL: url, Queue: queue}
}

func (p *AMQPPublisher) PublishJournalReviewed(ctx context.Context, event JournalReviewedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}

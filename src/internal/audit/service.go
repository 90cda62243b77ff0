package audit

import (
	"context"
	"encoding/json"
	"letterdesk-admin-svc/src/internal/config"
	"letterdesk-admin-svc/src/internal/models"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"go.mongodb.org/mongo-driver/mongo"
)

// Recorder appends session lifecycle events to the audit trail. Recording
// is advisory: a failure is logged and swallowed so the auth path never
// blocks on the audit trail.
type Recorder interface {
	Record(ctx context.Context, entry *models.AuditEntry)
}

type recorder struct {
	collection *mongo.Collection
	channel    *amqp.Channel
	cfg        *config.RabbitMQConfig
}

// NewRecorder builds a Recorder writing to the audit collection and, when
// channel is non-nil, publishing each entry to the activity exchange.
func NewRecorder(collection *mongo.Collection, channel *amqp.Channel, cfg *config.RabbitMQConfig) Recorder {
	return &recorder{
		collection: collection,
		channel:    channel,
		cfg:        cfg,
	}
}

func (r *recorder) Record(ctx context.Context, entry *models.AuditEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":      entry.Event,
			"session_id": entry.SessionID,
		}).Error("Failed to persist audit entry")
	}

	r.publish(entry)
}

// publish forwards the entry to the platform activity exchange.
func (r *recorder) publish(entry *models.AuditEntry) {
	if r.channel == nil {
		return
	}

	body, err := json.Marshal(entry)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal audit entry")
		return
	}

	err = r.channel.Publish(
		r.cfg.Exchange,
		r.cfg.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		logrus.WithError(err).WithField("event", entry.Event).Error("Failed to publish audit entry")
		return
	}

	logrus.WithFields(logrus.Fields{
		"event":       entry.Event,
		"session_id":  entry.SessionID,
		"exchange":    r.cfg.Exchange,
		"routing_key": r.cfg.RoutingKey,
	}).Debug("Audit entry published")
}

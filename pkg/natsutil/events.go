// Package natsutil publishes discovery events as CloudEvents to NATS JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

// Subjects of the events published by the discovery service.
const (
	SubjectHostCompleted        = "discovery.host.completed"
	SubjectRediscoveryScheduled = "discovery.rediscovery.scheduled"
	SubjectActivationRequested  = "discovery.activation.requested"
)

const (
	eventSource     = "autochecks/discovery"
	eventTypePrefix = "com.carverauto.autochecks."
	contentTypeJSON = "application/json"
)

// EventPublisher provides methods for publishing CloudEvents to NATS JetStream.
type EventPublisher struct {
	js     jetstream.JetStream
	stream string
	logger logger.Logger
	now    func() time.Time
}

// NewEventPublisher creates a new EventPublisher for the specified stream.
func NewEventPublisher(js jetstream.JetStream, streamName string, log logger.Logger) *EventPublisher {
	return &EventPublisher{
		js:     js,
		stream: streamName,
		logger: log,
		now:    time.Now,
	}
}

// PublishHostDiscovered announces the outcome of one discovery run.
func (p *EventPublisher) PublishHostDiscovered(
	ctx context.Context, host string, mode models.DiscoveryMode, result *models.DiscoveryResult) error {
	data := models.DiscoveryEventData{
		Host:      host,
		Mode:      mode,
		Result:    result,
		Timestamp: p.now().UTC(),
	}

	return p.publish(ctx, SubjectHostCompleted, host, data.Timestamp, data)
}

// PublishRediscoveryScheduled announces that host was queued for automatic rediscovery.
func (p *EventPublisher) PublishRediscoveryScheduled(ctx context.Context, host, reason string) error {
	data := models.DiscoveryEventData{
		Host:      host,
		Reason:    reason,
		Timestamp: p.now().UTC(),
	}

	return p.publish(ctx, SubjectRediscoveryScheduled, host, data.Timestamp, data)
}

// PublishActivationRequested announces that a sweep changed services and the
// core configuration needs to be activated.
func (p *EventPublisher) PublishActivationRequested(ctx context.Context, runID string, changedHosts []string) error {
	data := models.ActivationEventData{
		RunID:        runID,
		ChangedHosts: changedHosts,
		Timestamp:    p.now().UTC(),
	}

	return p.publish(ctx, SubjectActivationRequested, "", data.Timestamp, data)
}

func (p *EventPublisher) publish(ctx context.Context, subject, host string, ts time.Time, data interface{}) error {
	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventTypePrefix + subject,
		DataContentType: contentTypeJSON,
		Subject:         subject,
		Time:            &ts,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", subject, err)
	}

	ack, err := p.js.Publish(ctx, subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", subject, err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", subject).
		Str("host", host).
		Uint64("seq", ack.Sequence).
		Msg("Published event")

	return nil
}

// Connect dials NATS according to cfg and returns a publisher bound to the
// configured stream, creating or extending the stream as needed.
func Connect(ctx context.Context, cfg *models.EventsConfig, log logger.Logger, extraOpts ...nats.Option) (*EventPublisher, *nats.Conn, error) {
	if cfg == nil || cfg.NATS == nil {
		return nil, nil, ErrNATSNotConfigured
	}

	nc, err := ConnectWithSecurity(cfg.NATS, log, extraOpts...)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := CreateEventPublisherWithDomain(ctx, nc, cfg.NATS.Domain, cfg.StreamName, cfg.Subjects, log)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return publisher, nc, nil
}

// ConnectWithSecurity creates a NATS connection, using mTLS when cfg.TLS is set.
func ConnectWithSecurity(cfg *models.NATSConfig, log logger.Logger, extraOpts ...nats.Option) (*nats.Conn, error) {
	var opts []nats.Option

	if cfg.TLS != nil {
		tlsConf, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	opts = append(opts,
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

// CreateEventPublisherWithDomain creates an EventPublisher with optional NATS domain support.
func CreateEventPublisherWithDomain(
	ctx context.Context, nc *nats.Conn, domain, streamName string, subjects []string, log logger.Logger) (*EventPublisher, error) {
	var (
		js  jetstream.JetStream
		err error
	)

	if domain != "" {
		js, err = jetstream.NewWithDomain(nc, domain)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context with domain %s: %w", domain, err)
		}
	} else {
		js, err = jetstream.New(nc)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
	}

	if err := ensureStream(ctx, js, streamName, subjects, log); err != nil {
		return nil, err
	}

	return NewEventPublisher(js, streamName, log), nil
}

// ensureStream creates the stream or adds the discovery subjects it lacks.
func ensureStream(ctx context.Context, js jetstream.JetStream, streamName string, subjects []string, log logger.Logger) error {
	required := append([]string(nil), subjects...)
	for _, subject := range []string{SubjectHostCompleted, SubjectRediscoveryScheduled, SubjectActivationRequested} {
		required = ensureSubjectList(required, subject)
	}

	stream, err := js.Stream(ctx, streamName)
	if err != nil {
		if !isStreamMissingErr(err) {
			return fmt.Errorf("failed to look up stream %s: %w", streamName, err)
		}

		if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{Name: streamName, Subjects: required}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}

		log.Info().Str("stream", streamName).Strs("subjects", required).Msg("Created NATS JetStream stream")

		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stream %s: %w", streamName, err)
	}

	cfg := info.Config
	merged := append([]string(nil), cfg.Subjects...)

	for _, subject := range required {
		merged = ensureSubjectList(merged, subject)
	}

	if len(merged) == len(cfg.Subjects) {
		return nil
	}

	cfg.Subjects = merged

	if _, err := js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to extend subjects of stream %s: %w", streamName, err)
	}

	log.Info().Str("stream", streamName).Strs("subjects", merged).Msg("Extended NATS JetStream stream subjects")

	return nil
}

// ensureSubjectList appends subject unless an existing entry already covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, existing := range subjects {
		if matchesSubject(existing, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether the NATS subject pattern covers subject.
func matchesSubject(pattern, subject string) bool {
	patternTokens := strings.Split(pattern, ".")
	subjectTokens := strings.Split(subject, ".")

	for i, token := range patternTokens {
		if token == ">" {
			return i < len(subjectTokens)
		}

		if i >= len(subjectTokens) {
			return false
		}

		if token != "*" && token != subjectTokens[i] {
			return false
		}
	}

	return len(patternTokens) == len(subjectTokens)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}

package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"tour-service/internal/domain/providers"
)

// NatsPublisher publishes domain events as JSON on plain NATS subjects.
type NatsPublisher struct {
	nc     *nats.Conn
	logger zerolog.Logger
}

// ConnectNats establishes a NATS connection and keeps it open for future use.
// An empty url yields a publisher that drops every event.
func ConnectNats(url string, logger zerolog.Logger) (providers.EventPublisher, func(), error) {
	if url == "" {
		logger.Info().Msg("NATS_URL not set, domain events are disabled")
		return NoopPublisher{}, func() {}, nil
	}

	nc, err := nats.Connect(url,
		nats.Name("tour-service"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, nil, err
	}

	logger.Info().Str("url", nc.ConnectedUrl()).Msg("connected to NATS")
	p := NewNatsPublisher(nc, logger)
	return p, p.Close, nil
}

func NewNatsPublisher(nc *nats.Conn, logger zerolog.Logger) *NatsPublisher {
	return &NatsPublisher{nc: nc, logger: logger}
}

func (p *NatsPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Ensure NATS is connected before publishing
	if p.nc == nil || p.nc.IsClosed() {
		return nats.ErrConnectionClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return err
	}

	p.logger.Debug().Str("subject", subject).Int("bytes", len(data)).Msg("event published")
	return nil
}

// Close drains pending messages before closing the connection.
func (p *NatsPublisher) Close() {
	if p.nc == nil || p.nc.IsClosed() {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("NATS drain failed")
		p.nc.Close()
	}
	p.logger.Info().Msg("NATS connection closed")
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

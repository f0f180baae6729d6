package rpc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/igd-protocol/igd-go/pkg/log"
)

// MaxLoggedBody caps how many envelope bytes a logged exchange carries.
// Longer bodies are truncated and flagged.
const MaxLoggedBody = 4096

// LoggingCaller wraps a Caller and captures every exchange as protocol
// log events: the outgoing envelope, the incoming envelope, and transport
// failures. Request and response of one call share an exchange ID.
type LoggingCaller struct {
	inner   Caller
	plog    log.Logger
	gateway string
}

// NewLoggingCaller wraps inner so that all traffic is reported to plog.
// The gateway string tags every event with the gateway's identity.
func NewLoggingCaller(inner Caller, plog log.Logger, gateway string) *LoggingCaller {
	if plog == nil {
		plog = log.NoopLogger{}
	}
	return &LoggingCaller{inner: inner, plog: plog, gateway: gateway}
}

// Call forwards to the wrapped Caller, logging both directions.
func (c *LoggingCaller) Call(ctx context.Context, endpoint, serviceType, action string, body []byte) ([]byte, error) {
	id := uuid.NewString()
	c.plog.Log(log.Event{
		Timestamp:  time.Now(),
		ExchangeID: id,
		Direction:  log.DirectionOut,
		Category:   log.CategoryExchange,
		Gateway:    c.gateway,
		Action:     action,
		Exchange:   exchangePayload(endpoint, body),
	})

	resp, err := c.inner.Call(ctx, endpoint, serviceType, action, body)
	if err != nil {
		c.plog.Log(log.Event{
			Timestamp:  time.Now(),
			ExchangeID: id,
			Direction:  log.DirectionIn,
			Category:   log.CategoryError,
			Gateway:    c.gateway,
			Action:     action,
			Error:      &log.ErrorEvent{Message: err.Error(), Context: "call " + endpoint},
		})
		return resp, err
	}

	c.plog.Log(log.Event{
		Timestamp:  time.Now(),
		ExchangeID: id,
		Direction:  log.DirectionIn,
		Category:   log.CategoryExchange,
		Gateway:    c.gateway,
		Action:     action,
		Exchange:   exchangePayload(endpoint, resp),
	})
	return resp, nil
}

func exchangePayload(endpoint string, body []byte) *log.ExchangeEvent {
	ev := &log.ExchangeEvent{Endpoint: endpoint, Size: len(body)}
	if len(body) > MaxLoggedBody {
		ev.Body = body[:MaxLoggedBody]
		ev.Truncated = true
	} else {
		ev.Body = body
	}
	return ev
}

var _ Caller = (*LoggingCaller)(nil)

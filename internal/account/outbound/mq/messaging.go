package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/u22n/platform/internal/account/usecase"
	"github.com/u22n/platform/internal/pkg/instrument"
	"github.com/u22n/platform/internal/pkg/messaging"
	"github.com/u22n/platform/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishTwoFactorEnabled(ctx context.Context, msg usecase.TwoFactorEnabledEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishTwoFactorEnabled")
	defer span.End()

	body, err := json.Marshal(event.TwoFactorEnabledMessage{
		EventID:    msg.EventID,
		AccountID:  msg.AccountID,
		OccurredAt: msg.OccurredAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.TwoFactorEnabledDestination, msg.AccountID, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishTwoFactorDisabled(ctx context.Context, msg usecase.TwoFactorDisabledEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishTwoFactorDisabled")
	defer span.End()

	body, err := json.Marshal(event.TwoFactorDisabledMessage{
		EventID:    msg.EventID,
		AccountID:  msg.AccountID,
		Reason:     msg.Reason,
		OccurredAt: msg.OccurredAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.TwoFactorDisabledDestination, msg.AccountID, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// publish keys messages by account so brokers that partition or order by key
// keep one account's events in sequence.
func (m *Messaging) publish(ctx context.Context, dest string, accountID int64, body []byte) error {
	cID := instrument.GetCorrelationID(ctx)
	_, err := m.client.Publish(ctx, dest, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(strconv.FormatInt(accountID, 10)),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	})
	return err
}

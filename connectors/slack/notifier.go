// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package slack

import (
	"context"
	"errors"
	"fmt"

	"agentcore/platform/connectors/base"
	"agentcore/platform/domain"
	"agentcore/platform/shared/logger"
)

// Notifier delivers write gateway approval escalations over Slack,
// implementing writegateway.Notifier. In the Community edition the
// underlying connector always returns ErrEnterpriseFeature; Notifier
// degrades that into a logged warning rather than failing the
// propose/timeout call that triggered it, since an escalation channel
// being unavailable must never block the approval state machine.
type Notifier struct {
	conn    base.Connector
	channel string
	log     *logger.Logger
}

// NewNotifier wraps a connected (or stub) Slack connector. channel is
// the Slack channel escalations are posted to.
func NewNotifier(conn base.Connector, channel string) *Notifier {
	return &Notifier{conn: conn, channel: channel, log: logger.New("connectors.slack")}
}

// NotifyApprovalRequired posts an escalation message for a newly
// PROPOSED write operation awaiting approval.
func (n *Notifier) NotifyApprovalRequired(ctx context.Context, req domain.ApprovalRequest) error {
	text := fmt.Sprintf("Write operation %s on %s.%s (risk: %s) awaits approval before %s: %s",
		req.ID, req.Connector, req.Operation, req.Risk, req.DeadlineAt.Format("15:04:05 MST"), req.Rationale)
	return n.post(ctx, text)
}

// NotifyTimeout posts a message for an operation that timed out
// without an approval decision.
func (n *Notifier) NotifyTimeout(ctx context.Context, req domain.ApprovalRequest) error {
	text := fmt.Sprintf("Write operation %s on %s.%s timed out without approval and moved to TIMED_OUT",
		req.ID, req.Connector, req.Operation)
	return n.post(ctx, text)
}

func (n *Notifier) post(ctx context.Context, text string) error {
	_, err := n.conn.Execute(ctx, &base.Command{
		Action: "POST_MESSAGE",
		Parameters: map[string]interface{}{
			"channel": n.channel,
			"text":    text,
		},
	})
	if err != nil && errors.Is(err, ErrEnterpriseFeature) {
		n.log.Warn("", "", "slack escalation skipped: enterprise feature not licensed", map[string]interface{}{"text": text})
		return nil
	}
	return err
}

package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
)

// Users are addressed by their directory email
const (
	receiveIDType = "email"
	msgTypeText   = "text"
)

// messageCreator is the subset of the IM message API the notifier uses
type messageCreator interface {
	Create(ctx context.Context, req *larkim.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkim.CreateMessageResp, error)
}

// Notifier sends workflow notifications as Lark text messages
type Notifier struct {
	messages  messageCreator
	portalURL string
	logger    *zap.Logger
}

// NewNotifier creates a notifier backed by the Lark IM API
func NewNotifier(cfg Config, logger *zap.Logger) *Notifier {
	client := NewSDKClient(cfg)
	return newNotifier(client.Im.Message, cfg.PortalURL, logger)
}

func newNotifier(messages messageCreator, portalURL string, logger *zap.Logger) *Notifier {
	return &Notifier{
		messages:  messages,
		portalURL: strings.TrimSuffix(portalURL, "/"),
		logger:    logger,
	}
}

// NotifyApprover tells an approver that a step awaits them
func (n *Notifier) NotifyApprover(ctx context.Context, msg port.ApproverNotification) error {
	text := fmt.Sprintf("%s requests your approval (%s): %s [%s]",
		msg.RequesterName, msg.StepName, msg.Title, msg.RequestType)
	if link := n.link(msg.RequestID); link != "" {
		text += "\n" + link
	}
	return n.send(ctx, msg.ApproverEmail, text)
}

// NotifyRequester tells a requester the final decision
func (n *Notifier) NotifyRequester(ctx context.Context, msg port.OutcomeNotification) error {
	text := fmt.Sprintf("Your request %q was %s.", msg.Title, msg.Status)
	if msg.Comment != "" {
		text += "\nComment: " + msg.Comment
	}
	if link := n.link(msg.RequestID); link != "" {
		text += "\n" + link
	}
	return n.send(ctx, msg.RequesterEmail, text)
}

func (n *Notifier) link(requestID string) string {
	if n.portalURL == "" {
		return ""
	}
	return n.portalURL + "/requests/" + requestID
}

func (n *Notifier) send(ctx context.Context, email, text string) error {
	if email == "" {
		return fmt.Errorf("recipient has no email")
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(email).
			MsgType(msgTypeText).
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.messages.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send message", zap.String("receive_id", email), zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.Success() {
		n.logger.Error("API returned failure",
			zap.String("receive_id", email),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}
	n.logger.Info("Message sent", zap.String("message_id", messageID), zap.String("receive_id", email))
	return nil
}

// LogNotifier records notifications in the log when Lark is not configured
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that only logs
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyApprover(ctx context.Context, msg port.ApproverNotification) error {
	n.logger.Info("Approval pending",
		zap.String("request_id", msg.RequestID),
		zap.String("approver_id", msg.ApproverID),
		zap.String("step", msg.StepName))
	return nil
}

func (n *LogNotifier) NotifyRequester(ctx context.Context, msg port.OutcomeNotification) error {
	n.logger.Info("Request decided",
		zap.String("request_id", msg.RequestID),
		zap.String("requester_id", msg.RequesterID),
		zap.String("status", msg.Status))
	return nil
}

var (
	_ port.Notifier = (*Notifier)(nil)
	_ port.Notifier = (*LogNotifier)(nil)
)

package action

import (
	"fmt"

	"github.com/crmkit/automation/crm"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/util"
)

var _ Handler = new(sendEmailAction)

type SendEmailConfig struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendEmailAction struct {
	email crm.EmailSender
}

func NewSendEmailAction(email crm.EmailSender) *sendEmailAction {
	return &sendEmailAction{email: email}
}

func (a *sendEmailAction) Type() model.ActionType {
	return model.ACTION_SEND_EMAIL
}

func (a *sendEmailAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	conf, err := util.DecodeConfig[SendEmailConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.To) == 0 {
		return nil, fmt.Errorf("email recipient can not be empty")
	}
	msg := crm.EmailMessage{To: conf.To, Subject: conf.Subject, Body: conf.Body}
	if err := a.email.Send(ctx.TenantId, msg); err != nil {
		return nil, err
	}
	return map[string]any{"to": conf.To, "subject": conf.Subject}, nil
}

var _ Handler = new(sendChatMessageAction)

type SendChatMessageConfig struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type sendChatMessageAction struct {
	chat crm.ChatMessenger
}

func NewSendChatMessageAction(chat crm.ChatMessenger) *sendChatMessageAction {
	return &sendChatMessageAction{chat: chat}
}

func (a *sendChatMessageAction) Type() model.ActionType {
	return model.ACTION_SEND_CHAT_MESSAGE
}

func (a *sendChatMessageAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	conf, err := util.DecodeConfig[SendChatMessageConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.To) == 0 {
		return nil, fmt.Errorf("chat recipient can not be empty")
	}
	msg := crm.ChatMessage{To: conf.To, Body: conf.Body}
	if err := a.chat.Send(ctx.TenantId, msg); err != nil {
		return nil, err
	}
	return map[string]any{"to": conf.To}, nil
}

var _ Handler = new(notifyAction)

type NotifyConfig struct {
	UserId  string `json:"userId"`
	Message string `json:"message"`
}

type notifyAction struct {
	notifier crm.Notifier
}

func NewNotifyAction(notifier crm.Notifier) *notifyAction {
	return &notifyAction{notifier: notifier}
}

func (a *notifyAction) Type() model.ActionType {
	return model.ACTION_NOTIFY
}

func (a *notifyAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	conf, err := util.DecodeConfig[NotifyConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.UserId) == 0 {
		return nil, fmt.Errorf("notification userId can not be empty")
	}
	n := crm.Notification{UserId: conf.UserId, Message: conf.Message}
	if err := a.notifier.Notify(ctx.TenantId, n); err != nil {
		return nil, err
	}
	return map[string]any{"userId": conf.UserId}, nil
}

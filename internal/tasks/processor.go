package tasks

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photoselect/internal/mailer"
)

type Processor struct {
	mail *mailer.Sender
	log  zerolog.Logger
}

func NewProcessor(mail *mailer.Sender, log zerolog.Logger) *Processor {
	return &Processor{mail: mail, log: log}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	taskType := stringValue(msg.Values, "type")

	switch taskType {
	case "invitation":
		return p.handleInvitation(msg)
	default:
		p.log.Warn().Str("type", taskType).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleInvitation(msg redis.XMessage) error {
	to := stringValue(msg.Values, "to")
	workspace := stringValue(msg.Values, "workspace")
	role := stringValue(msg.Values, "role")
	acceptLink := stringValue(msg.Values, "acceptLink")
	expiresAt := stringValue(msg.Values, "expiresAt")

	if to == "" || acceptLink == "" {
		return fmt.Errorf("invitation task missing fields: to=%q acceptLink=%q", to, acceptLink)
	}

	body := fmt.Sprintf(
		"You have been invited to join %s as %s.\r\n\r\n"+
			"Accept the invitation here:\r\n%s\r\n\r\n"+
			"The invitation expires at %s.\r\n",
		workspace, role, acceptLink, expiresAt,
	)

	err := p.mail.Send(mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("Invitation to join %s", workspace),
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("send invitation mail: %w", err)
	}

	p.log.Info().Str("to", to).Str("workspace", workspace).Msg("invitation mail sent")
	return nil
}

func stringValue(values map[string]interface{}, key string) string {
	if v, ok := values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

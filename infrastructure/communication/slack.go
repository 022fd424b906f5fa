package communication

import (
	"fmt"

	"github.com/slack-go/slack"
)

// Slack carries operational notices (digest outcomes, renewal conflicts that
// exhausted retries) to the team channels. Optional: a nil *Slack is safe to
// call so wiring stays unconditional.
type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func NewSlack(token string, options SlackOption) *Slack {
	if token == "" {
		return nil
	}
	return &Slack{client: slack.New(token), options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	if s == nil || channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(message string) error {
	if s == nil {
		return nil
	}
	return s.postMessage(s.options.InfoChannelID, message)
}

func (s *Slack) Error(message string) error {
	if s == nil {
		return nil
	}
	return s.postMessage(s.options.ErrorChannelID, message)
}

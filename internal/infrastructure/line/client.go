package line

import (
	"fmt"
	"net/http"
	"simplereminder/internal/pkg/logger"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// Client wraps the linebot.Client.
type Client struct {
	*linebot.Client
	log logger.Logger
}

// NewClient creates a LINE Bot client. endpointBase overrides the API base
// URL when non-empty.
func NewClient(channelSecret, channelToken, endpointBase string, log logger.Logger) (*Client, error) {
	if channelSecret == "" || channelToken == "" {
		return nil, fmt.Errorf("🔴 ERROR: channel secret and channel access token must be set")
	}

	var opts []linebot.ClientOption
	if endpointBase != "" {
		opts = append(opts, linebot.WithEndpointBase(endpointBase))
	}
	bot, err := linebot.New(channelSecret, channelToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("🔴 ERROR: failed to create LINE Bot client: %w", err)
	}
	log.Info("Successfully created LINE Bot client.")
	return &Client{
		Client: bot,
		log:    log,
	}, nil
}

// SendMessages sends one or more messages using the ReplyMessage API.
func (c *Client) SendMessages(replyToken string, messages ...linebot.SendingMessage) error {
	_, err := c.ReplyMessage(replyToken, messages...).Do()
	if err != nil {
		return err // Return the error for the caller to handle
	}
	c.log.Debug("Successfully sent reply message.")
	return nil
}

// PushMessages sends one or more messages using the PushMessage API.
// silent disables the push notification sound on the recipient's device.
func (c *Client) PushMessages(to string, silent bool, messages ...linebot.SendingMessage) error {
	call := c.PushMessage(to, messages...)
	if silent {
		call = call.WithNotificationDisabled()
	}
	if _, err := call.Do(); err != nil {
		return err // Return the error for the caller to handle
	}
	c.log.Debug("Successfully sent push message.")
	return nil
}

// ParseRequest parses incoming webhook requests and verifies their signature.
func (c *Client) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return c.Client.ParseRequest(r)
}

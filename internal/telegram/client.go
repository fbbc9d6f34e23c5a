// Package telegram delivers recommendation digests via the Telegram Bot API.
// Messages use MarkdownV2 and are sent with linear-backoff retries.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/eventoracle/internal/models"
	"github.com/rewired-gh/eventoracle/internal/recommend"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendRecommendations sends the digest for one user's result. Empty results
// are not sent.
func (c *Client) SendRecommendations(user *models.User, res *recommend.Result) error {
	if res == nil || len(res.Events) == 0 {
		return nil
	}

	return c.send(formatMessage(user, res))
}

// SendError reports a failed refresh cycle.
func (c *Client) SendError(err error) error {
	return c.send("⚠️ *Refresh failed*\n\n" + escapeMarkdownV2(err.Error()))
}

// SendRecovery reports that cycles succeed again after failures.
func (c *Client) SendRecovery(failures int) error {
	return c.send(fmt.Sprintf("✅ *Recovered* after %d failed cycle\\(s\\)", failures))
}

// send delivers a MarkdownV2 message with retry
func (c *Client) send(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatMessage renders the ranked events of res as a MarkdownV2 digest.
func formatMessage(user *models.User, res *recommend.Result) string {
	var b strings.Builder

	name := user.Name
	if name == "" {
		name = user.ID
	}
	fmt.Fprintf(&b, "📍 *Events for %s*\n", escapeMarkdownV2(name))
	fmt.Fprintf(&b, "Search radius: %s\n\n", escapeMarkdownV2(formatDistance(res.FinalRadius)))

	scored := make(map[string]recommend.ScoredCandidate, len(res.Scored))
	for _, sc := range res.Scored {
		scored[sc.Event.ID] = sc
	}

	for i, e := range res.Events {
		title := e.Title
		if title == "" {
			title = e.ID
		}
		fmt.Fprintf(&b, "%d\\. *%s*\n", i+1, escapeMarkdownV2(title))

		if sc, ok := scored[e.ID]; ok {
			fmt.Fprintf(&b, "   🚶 %s away, score %s\n",
				escapeMarkdownV2(formatDistance(sc.DistanceKm)),
				escapeMarkdownV2(fmt.Sprintf("%.2f", sc.Score)))
		}
		if len(e.Categories) > 0 {
			fmt.Fprintf(&b, "   🏷 %s\n", escapeMarkdownV2(strings.Join(e.Categories, ", ")))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// formatDistance formats a distance in km, switching to metres below 1 km.
func formatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(km*1000+0.5))
	}
	if km < 100 {
		return fmt.Sprintf("%.1fkm", km)
	}
	return fmt.Sprintf("%.0fkm", km)
}

package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification describes a commission health change.
type Notification struct {
	CheckedAt              time.Time
	PreviousStatus         string
	Status                 string
	AverageDailyCommission decimal.Decimal
	TotalRecords           int
	LastRecordAt           *time.Time
	Channels               []string
	AdditionalMsg          string
}

// Notifier delivers notifications to an outside channel.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier posts messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify sends the rendered text via sendMessage.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false: %s", result.Description)
		}
	}

	n.logger.Info().
		Str("status", note.Status).
		Str("previous", note.PreviousStatus).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("commission alert sent (telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Commission Health Alert]\n")
	builder.WriteString(fmt.Sprintf("Checked: %s UTC\n", note.CheckedAt.UTC().Format(time.RFC3339)))
	if note.PreviousStatus != "" {
		builder.WriteString(fmt.Sprintf("Status: %s -> %s\n", note.PreviousStatus, note.Status))
	} else {
		builder.WriteString(fmt.Sprintf("Status: %s\n", note.Status))
	}
	builder.WriteString(fmt.Sprintf("Average daily commission (30d): %s\n", note.AverageDailyCommission.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Records: %d\n", note.TotalRecords))
	if note.LastRecordAt != nil {
		builder.WriteString(fmt.Sprintf("Last booking: %s UTC\n", note.LastRecordAt.UTC().Format(time.RFC3339)))
	} else {
		builder.WriteString("Last booking: never\n")
	}
	if len(note.Channels) > 0 {
		builder.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(note.Channels, ",")))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)

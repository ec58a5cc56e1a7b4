package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier sends a job digest to a Telegram chat via the Bot API.
type TelegramNotifier struct {
	apiURL     string
	chatID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTelegramNotifier returns a notifier posting to the given bot's chat.
func NewTelegramNotifier(botToken, chatID string, httpClient *http.Client, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		apiURL:     "https://api.telegram.org/bot" + botToken + "/sendMessage",
		chatID:     chatID,
		httpClient: httpClient,
		logger:     logger,
	}
}

type telegramPayload struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Notify sends the postings as one Markdown digest message. A rate-limited
// send is retried once after the server's Retry-After delay.
func (t *TelegramNotifier) Notify(postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	payload := telegramPayload{
		ChatID:                t.chatID,
		Text:                  buildDigest(postings),
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	resp, err := t.httpClient.Post(t.apiURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		t.logger.Warn("telegram rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := t.httpClient.Post(t.apiURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to telegram (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("telegram returned %d on retry", resp2.StatusCode)
		}
		t.logger.Info("telegram digest sent", "postings", len(postings), "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned %d", resp.StatusCode)
	}
	t.logger.Info("telegram digest sent", "postings", len(postings))
	return nil
}

// buildDigest renders the postings into the Markdown digest format.
func buildDigest(postings []model.Posting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *Top %d Jobs for You*\n\n", len(postings))

	for i, p := range postings {
		fmt.Fprintf(&b, "*%d. %s*\n", i+1, p.Title)
		fmt.Fprintf(&b, "📍 %s", p.Company)
		if p.Location != "" {
			fmt.Fprintf(&b, " | %s", p.Location)
		}
		if p.SalaryMin != nil && p.SalaryMax != nil {
			fmt.Fprintf(&b, "\n💰 $%d - $%d", *p.SalaryMin, *p.SalaryMax)
		}
		if p.MatchScore != nil {
			fmt.Fprintf(&b, "\n🎯 Match: %d%%", *p.MatchScore)
		}
		fmt.Fprintf(&b, "\n🔗 [View Job](%s)\n\n", p.URL)
	}

	return strings.TrimRight(b.String(), "\n")
}

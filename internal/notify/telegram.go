package notify

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TelegramNotifier sends notifications via a Telegram bot
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// NewTelegramNotifier creates a new Telegram notifier. It is disabled
// (sends become no-ops) when token or chat ID is empty.
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  "https://api.telegram.org",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send sends a Markdown-formatted message to the configured chat
func (t *TelegramNotifier) Send(n Notification) error {
	if t.botToken == "" || t.chatID == "" {
		return nil // Disabled
	}

	text := "*" + EscapeMarkdown(n.Title) + "*\n\n" + EscapeMarkdown(n.Message)
	if n.PRURL != "" {
		text += "\n" + n.PRURL
	}

	form := url.Values{
		"chat_id":                  {t.chatID},
		"text":                     {text},
		"parse_mode":               {"Markdown"},
		"disable_web_page_preview": {"true"},
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	resp, err := t.client.PostForm(endpoint, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned %d", resp.StatusCode)
	}
	return nil
}

// EscapeMarkdown escapes the characters Telegram's Markdown parse mode
// treats specially.
func EscapeMarkdown(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`")
	return r.Replace(s)
}

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"yad2watch/app/listing"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier delivers alert messages to one Telegram chat via the Bot API.
// Delivery is fire-and-forget from the engine's perspective: a failed send
// is reported as an error for logging but never retried here.
type Notifier struct {
	httpClient *http.Client
	apiBase    string
	botToken   string
	chatID     string
	printer    *message.Printer
}

func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		apiBase:    defaultAPIBase,
		botToken:   botToken,
		chatID:     chatID,
		printer:    message.NewPrinter(language.Hebrew),
	}
}

func (n *Notifier) NotifyNew(ctx context.Context, key string, l listing.Listing) error {
	neighborhoodPart := ""
	if l.Neighborhood != listing.Unknown {
		neighborhoodPart = fmt.Sprintf("שכונה: %s, ", l.Neighborhood)
	}

	listingType := "תיווך"
	if l.IsPrivate {
		listingType = "*פרטי*"
	}

	text := fmt.Sprintf(
		"🔔 דירה חדשה ביד2!\n"+
			"עיר: %s, %sרחוב: %s\n"+
			"חדרים: %s, קומה: %s\n"+
			"שטח בנוי: %s מ\"ר\n"+
			"מחיר: %s ₪\n"+
			"(%s)\n"+
			"טלפון: %s\n"+
			"%s",
		l.City, neighborhoodPart, l.Street,
		formatDecimal(l.Rooms), l.Floor,
		formatDecimal(l.SquareMeters),
		n.formatPrice(l.Price),
		listingType,
		orDash(l.Phone),
		key)

	return n.send(ctx, text)
}

func (n *Notifier) NotifyPriceChange(ctx context.Context, key string, l listing.Listing, oldPrice int) error {
	text := fmt.Sprintf(
		"💸 שינוי במחיר מודעה קיימת:\n"+
			"עיר: %s\nרחוב: %s\nשכונה: %s\nקומה: %s\nחדרים: %s\n"+
			"מחיר קודם: %s ₪\n"+
			"מחיר חדש: %s ₪\n"+
			"%s",
		l.City, l.Street, l.Neighborhood, l.Floor, formatDecimal(l.Rooms),
		n.formatPrice(oldPrice),
		n.formatPrice(l.Price),
		key)

	return n.send(ctx, text)
}

func (n *Notifier) NotifyRepost(ctx context.Context, key string, l listing.Listing, matchedKey string, matched listing.Listing) error {
	text := fmt.Sprintf(
		"🔁 יתכן שזו אותה דירה שפורסמה מחדש ע\"י אותו מפרסם:\n"+
			"עיר: %s\nרחוב: %s\nשכונה: %s\nקומה: %s\nחדרים: %s\nמ\"ר: %s\n"+
			"מחיר קודם: %s ₪\n"+
			"מחיר חדש: %s ₪\n"+
			"טלפון: %s\n"+
			"קישור חדש: %s\n"+
			"קישור קודם: %s",
		l.City, l.Street, l.Neighborhood, l.Floor, formatDecimal(l.Rooms), formatDecimal(l.SquareMeters),
		n.formatPrice(matched.Price),
		n.formatPrice(l.Price),
		orDash(l.Phone),
		key,
		matchedKey)

	return n.send(ctx, text)
}

func (n *Notifier) send(ctx context.Context, text string) error {
	payload := map[string]any{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API error: %d %s: %s", resp.StatusCode, resp.Status, respBody)
	}

	return nil
}

// formatPrice renders a price with locale-aware thousands separators
// (2200000 -> 2,200,000).
func (n *Notifier) formatPrice(price int) string {
	return n.printer.Sprintf("%d", price)
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

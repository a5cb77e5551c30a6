package yad2

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"yad2watch/app/cfg"
	"yad2watch/app/search"
)

// Client talks to the upstream listing feed and contact endpoint. All
// requests share one rate limiter so the monitor never bursts against the
// upstream, and one retry policy per endpoint kind.
type Client struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	feedRetry    RetryPolicy
	contactRetry RetryPolicy
	feedURL      string
	contactURL   string
	userAgent    string
}

func NewClient(httpClient *http.Client) *Client {
	c := cfg.Get()

	return &Client{
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Every(time.Duration(c.RequestDelayMs)*time.Millisecond), 1),
		feedRetry:    RetryPolicy{MaxAttempts: 3, BaseDelay: 5 * time.Second},
		contactRetry: RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second},
		feedURL:      c.FeedURL,
		contactURL:   c.ContactURL,
		userAgent:    c.UserAgent,
	}
}

// FetchPage fetches one result page for a search profile and returns the raw
// listings plus the total page count reported by the upstream.
func (c *Client) FetchPage(ctx context.Context, profile *search.Config, page int) ([]RawListing, int, error) {
	var listings []RawListing
	totalPages := 1

	err := c.feedRetry.Do(ctx, fmt.Sprintf("fetch page %d", page), func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, profile.Settings.GetTimeout())
		defer cancel()

		req, err := http.NewRequestWithContext(timeoutCtx, "GET", c.feedURL+"?"+feedQuery(profile, page), nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch page: %w", err)
		}
		defer resp.Body.Close()

		// An HTML response instead of JSON means the upstream's bot
		// detection kicked in; worth retrying after a delay.
		if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			return fmt.Errorf("bot detection: got HTML response for page %d", page)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		var feed feedResponse
		if err := json.Unmarshal(data, &feed); err != nil {
			return fmt.Errorf("failed to parse feed response: %w", err)
		}

		listings = collectListings(feed.Data)
		if feed.Pagination.TotalPages > 0 {
			totalPages = feed.Pagination.TotalPages
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return listings, totalPages, nil
}

// FetchAll walks the pagination for one search profile. A page that keeps
// failing after retries is abandoned together with the remaining pages; the
// listings fetched so far are returned.
func (c *Client) FetchAll(ctx context.Context, profile *search.Config) ([]RawListing, error) {
	var all []RawListing

	page := 1
	totalPages := 1
	for page <= totalPages {
		listings, pages, err := c.FetchPage(ctx, profile, page)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			slog.Warn("Page abandoned", "search", profile.Name, "page", page, "error", err)
			break
		}

		all = append(all, listings...)
		totalPages = pages
		slog.Debug("Page fetched", "search", profile.Name, "page", page, "total_pages", totalPages, "listings", len(listings))
		page++
	}

	return all, nil
}

// FetchContact looks up the advertiser phone number for one listing token.
// Returns "" when the upstream has no phone on record.
func (c *Client) FetchContact(ctx context.Context, token string) (string, error) {
	var phone string

	err := c.contactRetry.Do(ctx, "fetch contact", func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(timeoutCtx, "GET", fmt.Sprintf("%s/%s/customer", c.contactURL, token), nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch contact: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
		}

		var contact contactResponse
		if err := json.NewDecoder(resp.Body).Decode(&contact); err != nil {
			return fmt.Errorf("failed to parse contact response: %w", err)
		}

		phone = cmp.Or(contact.Data.BrokerPhone, contact.Data.Phone)
		return nil
	})
	if err != nil {
		return "", err
	}

	return phone, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,he;q=0.8")
	req.Header.Set("Referer", "https://www.yad2.co.il/")
	req.Header.Set("Origin", "https://www.yad2.co.il")
}

// feedQuery encodes a search profile as the upstream's query parameters.
func feedQuery(profile *search.Config, page int) string {
	params := url.Values{}
	params.Set("city", profile.City)
	if len(profile.Neighborhoods) > 0 {
		params.Set("multiNeighborhood", strings.Join(profile.Neighborhoods, ","))
	}
	if profile.Area != "" {
		params.Set("area", profile.Area)
	}
	if profile.TopArea != "" {
		params.Set("topArea", profile.TopArea)
	}
	params.Set("property", profile.Property)
	if profile.MaxPrice > 0 {
		params.Set("maxPrice", strconv.Itoa(profile.MaxPrice))
	}
	if profile.MinRooms > 0 {
		params.Set("minRooms", formatRooms(profile.MinRooms))
	}
	if profile.MaxRooms > 0 {
		params.Set("maxRooms", formatRooms(profile.MaxRooms))
	}
	if profile.MinSquareM > 0 {
		params.Set("minSquaremeter", strconv.Itoa(profile.MinSquareM))
	}
	if profile.MinFloor > 0 {
		params.Set("minFloor", strconv.Itoa(profile.MinFloor))
	}
	params.Set("priceOnly", "1")
	params.Set("sort", "1")
	params.Set("page", strconv.Itoa(page))
	return params.Encode()
}

func formatRooms(rooms float64) string {
	return strconv.FormatFloat(rooms, 'f', -1, 64)
}

// collectListings gathers results from every list-valued category of the
// data container, excluding the "yad1" promotional block.
func collectListings(data map[string]json.RawMessage) []RawListing {
	var listings []RawListing
	for key, raw := range data {
		if key == "yad1" {
			continue
		}
		var list []RawListing
		if err := json.Unmarshal(raw, &list); err != nil {
			// Non-list values (counters, flags) live alongside the
			// category lists; skip them.
			continue
		}
		listings = append(listings, list...)
	}
	return listings
}

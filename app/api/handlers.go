package api

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"yad2watch/app/engine"
	"yad2watch/app/search"
	"yad2watch/app/store"
	"yad2watch/app/tasks"
)

func NewHandler(configCache *search.ConfigCache, seen *store.SeenStore,
	phones *store.PhoneCache, eng *engine.Engine,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		configCache: configCache,
		seen:        seen,
		phones:      phones,
		eng:         eng,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp":        time.Now().In(time.Local).Format(time.RFC3339),
		"tracked_listings": h.seen.Len(),
		"cached_phones":    h.phones.Len(),
		"loaded_searches":  h.configCache.GetConfigCount(),
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	totals, cycles, lastCycleAt := h.eng.Totals()

	stats := map[string]interface{}{
		"cycles":           cycles,
		"totals":           totals,
		"tracked_listings": h.seen.Len(),
		"cached_phones":    h.phones.Len(),
	}
	if !lastCycleAt.IsZero() {
		stats["last_cycle_at"] = lastCycleAt.In(time.Local).Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListListings(c *gin.Context) {
	entries := h.seen.Entries()

	listings := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		l := entry.Listing
		listings = append(listings, map[string]interface{}{
			"key":          entry.Key,
			"city":         l.City,
			"neighborhood": l.Neighborhood,
			"street":       l.Street,
			"floor":        l.Floor,
			"rooms":        l.Rooms,
			"sqm":          l.SquareMeters,
			"price":        l.Price,
			"phone":        l.Phone,
			"is_private":   l.IsPrivate,
			"token":        l.Token,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"listings": listings,
		"total":    len(listings),
	})
}

func (h *Handler) APIExportListingsCSV(c *gin.Context) {
	entries := h.seen.Entries()

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=listings.csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	header := []string{"key", "city", "neighborhood", "street", "floor", "rooms", "sqm", "price", "phone", "private", "token"}
	if err := w.Write(header); err != nil {
		slog.Error("CSV export failed", "error", err)
		return
	}

	for _, entry := range entries {
		l := entry.Listing
		record := []string{
			entry.Key,
			l.City,
			l.Neighborhood,
			l.Street,
			l.Floor,
			strconv.FormatFloat(l.Rooms, 'f', -1, 64),
			strconv.FormatFloat(l.SquareMeters, 'f', -1, 64),
			strconv.Itoa(l.Price),
			l.Phone,
			strconv.FormatBool(l.IsPrivate),
			l.Token,
		}
		if err := w.Write(record); err != nil {
			slog.Error("CSV export failed", "error", err)
			return
		}
	}
}

func (h *Handler) APIListSearches(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	searches := make([]map[string]interface{}, 0, len(configs))
	for _, config := range configs {
		searches = append(searches, map[string]interface{}{
			"name":             config.Name,
			"city":             config.City,
			"neighborhoods":    config.Neighborhoods,
			"max_price":        config.MaxPrice,
			"min_rooms":        config.MinRooms,
			"max_rooms":        config.MaxRooms,
			"min_square_meter": config.MinSquareM,
			"min_floor":        config.MinFloor,
			"enabled":          config.Settings.Enabled,
			"refresh_interval": config.Settings.GetRefreshInterval().String(),
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"searches": searches,
		"total":    len(searches),
	})
}

func (h *Handler) APITriggerCheck(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search name parameter"})
		return
	}

	if err := h.scheduler.TriggerSearch(name); err != nil {
		slog.Error("Failed to trigger search check", "search", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Search not found", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Check enqueued",
		"search":  name,
	})
}

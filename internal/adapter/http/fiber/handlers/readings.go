package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigem-energia/internal/domain"
	"github.com/seu-repo/sigem-energia/internal/service/analytics"
)

type ReadingsHandler struct {
	service        *analytics.Service
	defaultPerPage int
	log            *zap.Logger
}

func NewReadingsHandler(service *analytics.Service, defaultPerPage int, log *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{
		service:        service,
		defaultPerPage: defaultPerPage,
		log:            log,
	}
}

// Get serves GET /api/v1/readings. Query params: start, end (YYYY-MM-DD,
// inclusive), type (active|reactive|both), granularity (raw|hourly|daily|
// weekly), page, per_page, weekday_only, weekend_only, include (comma list of
// stats, hourly_pattern, daily_pattern, heatmap, cost_breakdown). All
// sections are computed over the same filter.
func (h *ReadingsHandler) Get(c *fiber.Ctx) error {
	filter, err := domain.NewQueryFilter(
		c.Query("start"),
		c.Query("end"),
		c.Query("type"),
		c.QueryBool("weekday_only"),
		c.QueryBool("weekend_only"),
	)
	if err != nil {
		return err
	}

	granularity, err := domain.ParseGranularity(c.Query("granularity"))
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", h.defaultPerPage)

	data, pagination, err := h.service.FetchReadings(c.Context(), filter, granularity, page, perPage)
	if err != nil {
		return err
	}

	resp := domain.ReadingsResponse{
		Data:       data,
		Pagination: pagination,
		Pricing:    h.service.Tariff(),
	}

	for _, section := range splitInclude(c.Query("include")) {
		switch section {
		case "stats":
			// Raw responses can still carry a daily summary section.
			g := granularity
			if g == domain.GranularityRaw {
				g = domain.GranularityDaily
			}
			stats, err := h.service.Stats(c.Context(), filter, g)
			if err != nil {
				return err
			}
			resp.Stats = stats
		case "hourly_pattern":
			entries, err := h.service.HourlyPattern(c.Context(), filter)
			if err != nil {
				return err
			}
			resp.HourlyPattern = entries
		case "daily_pattern":
			entries, err := h.service.DailyPattern(c.Context(), filter)
			if err != nil {
				return err
			}
			resp.DailyPattern = entries
		case "heatmap":
			maps, err := h.service.Heatmap(c.Context(), filter)
			if err != nil {
				return err
			}
			resp.Heatmap = maps
		case "cost_breakdown":
			report, err := h.service.CostBreakdown(c.Context(), filter)
			if err != nil {
				return err
			}
			resp.CostBreakdown = report
		default:
			return fmt.Errorf("%w: unknown include section %q", domain.ErrMalformedInput, section)
		}
	}

	return c.JSON(resp)
}

func splitInclude(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	sections := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sections = append(sections, p)
		}
	}
	return sections
}

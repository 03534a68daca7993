// Dashboard HTTP handlers.
//
// Read-only reports for hotel staff, all behind middleware.TenantGate:
//   - GET /api/analytics
//   - GET /api/analytics/summary
//   - GET /api/dashboard/overview
//   - GET /api/conversations/live
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hotel-concierge/internal/http/middleware"
	"github.com/tbourn/hotel-concierge/internal/services"
	"github.com/tbourn/hotel-concierge/internal/utils"
)

// AnalyticsResponse wraps services.Analytics.
type AnalyticsResponse struct {
	OK bool `json:"ok" example:"true"`
	*services.Analytics
}

// SummaryResponse wraps services.Summary.
type SummaryResponse struct {
	OK bool `json:"ok" example:"true"`
	*services.Summary
}

// OverviewResponse wraps services.Overview.
type OverviewResponse struct {
	OK bool `json:"ok" example:"true"`
	*services.Overview
}

// LiveResponse wraps services.LiveConversations.
type LiveResponse struct {
	OK bool `json:"ok" example:"true"`
	*services.LiveConversations
}

func queryDays(c *gin.Context) int {
	return utils.ClampQuery(c.Query("days"), services.DefaultDays, 1, services.MaxDays)
}

// Analytics godoc
// @ID          getAnalytics
// @Summary     Message analytics
// @Description Totals, replies by source per day, guest messages per day and per hour.
// @Tags        Dashboard
// @Produce     json
//
// @Param       hotel_id   query  string  true   "Hotel ID"   example(demo-hotel)
// @Param       hotel_key  query  string  true   "Hotel key"
// @Param       days       query  int     false  "Window in days"  minimum(1) maximum(90) default(7)
//
// @Success     200  {object}  handlers.AnalyticsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/analytics [get]
func (h *Handlers) Analytics(c *gin.Context) {
	res, err := h.analytics.Analytics(c.Request.Context(), middleware.HotelID(c), queryDays(c))
	if err != nil {
		internal(c, err)
		return
	}
	ok(c, http.StatusOK, AnalyticsResponse{OK: true, Analytics: res})
}

// Summary godoc
// @ID          getAnalyticsSummary
// @Summary     Plan usage summary
// @Description Plan, daily AI cap and usage, free versus paid replies and a one-line summary.
// @Tags        Dashboard
// @Produce     json
//
// @Param       hotel_id   query  string  true   "Hotel ID"   example(demo-hotel)
// @Param       hotel_key  query  string  true   "Hotel key"
// @Param       days       query  int     false  "Window in days"  minimum(1) maximum(90) default(7)
//
// @Success     200  {object}  handlers.SummaryResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Hotel not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/analytics/summary [get]
func (h *Handlers) Summary(c *gin.Context) {
	res, err := h.analytics.Summary(c.Request.Context(), middleware.HotelID(c), queryDays(c))
	if errors.Is(err, services.ErrHotelNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, textNotFound)
		return
	}
	if err != nil {
		internal(c, err)
		return
	}
	ok(c, http.StatusOK, SummaryResponse{OK: true, Summary: res})
}

// Overview godoc
// @ID          getDashboardOverview
// @Summary     Dashboard overview
// @Description KPIs, languages, busiest hours, repeated questions, events and conversion rates.
// @Tags        Dashboard
// @Produce     json
//
// @Param       hotel_id   query  string  true   "Hotel ID"   example(demo-hotel)
// @Param       hotel_key  query  string  true   "Hotel key"
// @Param       days       query  int     false  "Window in days"  minimum(1) maximum(90) default(7)
//
// @Success     200  {object}  handlers.OverviewResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/dashboard/overview [get]
func (h *Handlers) Overview(c *gin.Context) {
	res, err := h.analytics.Overview(c.Request.Context(), middleware.HotelID(c), queryDays(c))
	if err != nil {
		internal(c, err)
		return
	}
	ok(c, http.StatusOK, OverviewResponse{OK: true, Overview: res})
}

// LiveConversations godoc
// @ID          getLiveConversations
// @Summary     Recently active conversations
// @Tags        Dashboard
// @Produce     json
//
// @Param       hotel_id   query  string  true   "Hotel ID"   example(demo-hotel)
// @Param       hotel_key  query  string  true   "Hotel key"
// @Param       minutes    query  int     false  "Activity window"  minimum(1) maximum(1440) default(30)
// @Param       limit      query  int     false  "Max sessions"     minimum(1) maximum(200) default(40)
//
// @Success     200  {object}  handlers.LiveResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/conversations/live [get]
func (h *Handlers) LiveConversations(c *gin.Context) {
	minutes := utils.ClampQuery(c.Query("minutes"), services.DefaultMinutes, 1, services.MaxMinutes)
	limit := utils.ClampQuery(c.Query("limit"), services.DefaultLive, 1, services.MaxLive)

	res, err := h.analytics.Live(c.Request.Context(), middleware.HotelID(c), minutes, limit)
	if err != nil {
		internal(c, err)
		return
	}
	ok(c, http.StatusOK, LiveResponse{OK: true, LiveConversations: res})
}

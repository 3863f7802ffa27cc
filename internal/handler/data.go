package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"warmhome-backend/internal/analytics"
	"warmhome-backend/pkg/logger"
)

// DataHandler serves the dashboard's market data endpoints. The repository
// may be nil when MongoDB is not configured; every endpoint then answers
// 503 instead of panicking.
type DataHandler struct {
	repo *analytics.Repository
}

func NewDataHandler(repo *analytics.Repository) *DataHandler {
	return &DataHandler{repo: repo}
}

func (h *DataHandler) available(c *gin.Context) bool {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market data is not available"})
		return false
	}
	return true
}

func (h *DataHandler) States(c *gin.Context) {
	if !h.available(c) {
		return
	}

	states, err := h.repo.States(c.Request.Context())
	if err != nil {
		dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, states)
}

func (h *DataHandler) Suburbs(c *gin.Context) {
	if !h.available(c) {
		return
	}

	suburbs, err := h.repo.Suburbs(c.Request.Context(), c.Query("state"))
	if err != nil {
		dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, suburbs)
}

func (h *DataHandler) BarChart(c *gin.Context) {
	if !h.available(c) {
		return
	}

	points, err := h.repo.BarChart(c.Request.Context(), c.Query("state"))
	if err != nil {
		dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (h *DataHandler) LineGraph(c *gin.Context) {
	if !h.available(c) {
		return
	}

	points, err := h.repo.LineGraph(c.Request.Context(), c.Query("suburb"))
	if err != nil {
		dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (h *DataHandler) CityComparison(c *gin.Context) {
	if !h.available(c) {
		return
	}

	points, err := h.repo.CityComparison(c.Request.Context())
	if err != nil {
		dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (h *DataHandler) Stats(c *gin.Context) {
	if !h.available(c) {
		return
	}

	stats, err := h.repo.Stats(c.Request.Context(), c.Query("state"), c.Query("suburb"))
	if err != nil {
		dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Properties accepts an optional JSON filter document in the query
// parameter, mirroring the dashboard's ad-hoc listing queries.
func (h *DataHandler) Properties(c *gin.Context) {
	if !h.available(c) {
		return
	}

	raw := c.DefaultQuery("query", "{}")
	filter := bson.M{}
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query filter"})
		return
	}

	properties, err := h.repo.Properties(c.Request.Context(), filter)
	if err != nil {
		dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// Search finds listings for a region within a price range. The region may
// be a bare suburb name or a qualified "STATE-suburb" id.
func (h *DataHandler) Search(c *gin.Context) {
	if !h.available(c) {
		return
	}

	min := parsePrice(c.Query("min"), 0)
	max := parsePrice(c.Query("max"), math.MaxFloat64)

	result, err := h.repo.Search(c.Request.Context(), c.Query("region"), min, max)
	if err != nil {
		dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parsePrice(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func dataError(c *gin.Context, err error) {
	logger.Errorf("Data query failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data"})
}

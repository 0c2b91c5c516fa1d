package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaisel-labs/basin-dashboard/internal/insights"
)

const integratedDataset = "integrated"

// handleV1Insights returns the whole narrative catalogue
// GET /api/v1/insights
func (s *Server) handleV1Insights(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"datasets":   s.catalog.Datasets,
			"integrated": s.catalog.Integrated,
		},
		"meta": gin.H{
			"datasets": s.catalog.Names(),
		},
	})
}

// handleV1InsightsDataset returns the narrative for one dataset
// GET /api/v1/insights/:dataset
func (s *Server) handleV1InsightsDataset(c *gin.Context) {
	name := c.Param("dataset")
	if name == integratedDataset {
		c.JSON(http.StatusOK, gin.H{"data": s.catalog.Integrated})
		return
	}

	narrative, err := s.catalog.Dataset(name)
	if err != nil {
		if errors.Is(err, insights.ErrUnknownDataset) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": narrative})
}

// handleDashboardData returns the aggregate payload of the dashboard page
// GET /api/data
func (s *Server) handleDashboardData(c *gin.Context) {
	h := s.catalog.Headline
	c.JSON(http.StatusOK, gin.H{
		"water_quality":      h.WaterQuality,
		"mineral_extraction": h.MineralExtraction,
		"timber_production":  h.TimberProduction,
		"recommendations":    s.catalog.Recommendations(insights.DefaultRecommendationLimit),
	})
}

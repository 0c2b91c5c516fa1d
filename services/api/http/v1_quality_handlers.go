package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kaisel-labs/basin-dashboard/internal/render"
	"github.com/kaisel-labs/basin-dashboard/internal/source"
	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
)

// load runs one dataset load bounded by the request context.
func (s *Server) load(c *gin.Context) (source.Result, *waterquality.Dataset) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	res := s.data.Load(ctx)
	return res, res.Dataset()
}

// loadMeta describes a load outcome. Fetch failures carry the reason.
func loadMeta(res source.Result) gin.H {
	meta := gin.H{
		"status":    res.Status,
		"source":    res.Source,
		"count":     len(res.Records),
		"warnings":  len(res.Warnings),
		"loaded_at": res.LoadedAt.UTC().Format(time.RFC3339),
	}
	if res.Status == source.StatusFetchFailed {
		meta["error"] = res.Error()
	}
	return meta
}

func indexOptions(c *gin.Context) ([]waterquality.IndexOption, bool) {
	switch c.Query("sort") {
	case "", "first":
		return nil, true
	case "year":
		return []waterquality.IndexOption{waterquality.SortByYear()}, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort, expected first or year"})
		return nil, false
	}
}

func (s *Server) absentPolicy(c *gin.Context) (render.AbsentPolicy, bool) {
	raw := c.Query("absent")
	if raw == "" {
		return s.cfg.AbsentPolicy, true
	}
	p, err := render.ParseAbsentPolicy(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid absent, expected zero, gap or omit"})
		return "", false
	}
	return p, true
}

// handleV1Records returns the loaded records
// GET /api/v1/quality/records
func (s *Server) handleV1Records(c *gin.Context) {
	res, _ := s.load(c)

	meta := loadMeta(res)
	if len(res.Warnings) > 0 {
		meta["row_warnings"] = res.Warnings
	}
	c.JSON(http.StatusOK, gin.H{
		"data": res.Records,
		"meta": meta,
	})
}

// handleV1Years returns the year index
// GET /api/v1/quality/years?sort=year
func (s *Server) handleV1Years(c *gin.Context) {
	opts, ok := indexOptions(c)
	if !ok {
		return
	}
	res, d := s.load(c)

	c.JSON(http.StatusOK, gin.H{
		"data": d.YearIndex(opts...),
		"meta": loadMeta(res),
	})
}

// handleV1Series returns one status series of a measure over the year index
// GET /api/v1/quality/series/:measure?status=clean&absent=gap&sort=year
func (s *Server) handleV1Series(c *gin.Context) {
	measure := c.Param("measure")
	status := c.DefaultQuery("status", waterquality.StatusClean)
	if !slices.Contains(waterquality.Statuses(), status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	opts, ok := indexOptions(c)
	if !ok {
		return
	}
	policy, ok := s.absentPolicy(c)
	if !ok {
		return
	}

	res, d := s.load(c)
	series := d.StatusSeries(measure, status, opts...)

	values := make([]*float64, len(series.Cells))
	for i, cell := range series.Cells {
		if cell.Present {
			v := cell.Value
			values[i] = &v
		} else if policy == render.AbsentZero {
			values[i] = new(float64)
		}
	}

	meta := loadMeta(res)
	meta["absent"] = policy
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"measure": series.Measure,
			"status":  series.Status,
			"years":   series.Years,
			"cells":   series.Cells,
			"values":  values,
		},
		"meta": meta,
	})
}

// handleV1Snapshot returns the measure x status snapshot of one date
// GET /api/v1/quality/snapshot/:date (date may be "latest")
func (s *Server) handleV1Snapshot(c *gin.Context) {
	date := c.Param("date")
	opts, ok := indexOptions(c)
	if !ok {
		return
	}
	res, d := s.load(c)

	meta := loadMeta(res)
	if date == "latest" {
		snap, found := d.LatestSnapshot(opts...)
		if !found {
			c.JSON(http.StatusOK, gin.H{"data": nil, "meta": meta})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": snap, "meta": meta})
		return
	}

	if res.Status == source.StatusOK && !slices.Contains(d.YearIndex(), date) {
		c.JSON(http.StatusNotFound, gin.H{"error": "date not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d.Snapshot(date), "meta": meta})
}

// handleV1Comparison returns the first and last year snapshots
// GET /api/v1/quality/comparison?sort=year
func (s *Server) handleV1Comparison(c *gin.Context) {
	opts, ok := indexOptions(c)
	if !ok {
		return
	}
	res, d := s.load(c)

	cmp, found := d.Comparison(opts...)
	if !found {
		c.JSON(http.StatusOK, gin.H{"data": nil, "meta": loadMeta(res)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cmp, "meta": loadMeta(res)})
}

type summaryView struct {
	waterquality.Summary
	Direction string `json:"direction"`
}

// handleV1Summary returns first-versus-latest statistics
// GET /api/v1/quality/summary?measure=bod5
func (s *Server) handleV1Summary(c *gin.Context) {
	opts, ok := indexOptions(c)
	if !ok {
		return
	}
	measures := waterquality.Measures()
	if m := c.Query("measure"); m != "" {
		measures = []string{m}
	}

	res, d := s.load(c)
	out := make([]summaryView, 0, len(measures))
	for _, m := range measures {
		sum := d.Summary(m, opts...)
		out = append(out, summaryView{Summary: sum, Direction: waterquality.Direction(sum.CleanChange)})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": out,
		"meta": loadMeta(res),
	})
}

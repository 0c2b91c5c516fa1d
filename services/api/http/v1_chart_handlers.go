package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kaisel-labs/basin-dashboard/internal/render"
	"github.com/kaisel-labs/basin-dashboard/internal/source"
	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
)

type chartRequest struct {
	kind string
	opts render.BuildOptions
}

// panelKey identifies one board panel per distinct chart request.
func (r chartRequest) panelKey(sortParam string) string {
	return r.kind + "|" + r.opts.Date + "|" + r.opts.Measure + "|" + string(r.opts.Policy) + "|" + sortParam
}

func (s *Server) parseChartRequest(c *gin.Context) (chartRequest, bool) {
	index, ok := indexOptions(c)
	if !ok {
		return chartRequest{}, false
	}
	policy, ok := s.absentPolicy(c)
	if !ok {
		return chartRequest{}, false
	}
	return chartRequest{
		kind: c.Param("kind"),
		opts: render.BuildOptions{
			Date:    c.DefaultQuery("date", "latest"),
			Measure: c.DefaultQuery("measure", waterquality.MeasureBOD5),
			Policy:  policy,
			Index:   index,
		},
	}, true
}

// buildChart writes the response itself unless it returns a spec.
func buildChart(c *gin.Context, req chartRequest, res source.Result, d *waterquality.Dataset) (render.Spec, bool) {
	spec, ok, err := render.Build(req.kind, d, req.opts)
	switch {
	case errors.Is(err, render.ErrUnknownKind):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart kind"})
		return render.Spec{}, false
	case errors.Is(err, render.ErrUnknownDate):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown date"})
		return render.Spec{}, false
	case errors.Is(err, render.ErrUnknownMeasure):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown measure"})
		return render.Spec{}, false
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return render.Spec{}, false
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"data": nil, "meta": loadMeta(res)})
		return render.Spec{}, false
	}
	return spec, true
}

// handleV1ChartSpec returns a chart spec as JSON
// GET /api/v1/charts/:kind?date=latest&measure=bod5&absent=gap&sort=year
func (s *Server) handleV1ChartSpec(c *gin.Context) {
	req, ok := s.parseChartRequest(c)
	if !ok {
		return
	}
	res, d := s.load(c)

	spec, ok := buildChart(c, req, res, d)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": spec, "meta": loadMeta(res)})
}

// handleV1ChartPNG renders a chart through the shared board. A chart with
// nothing to draw answers like an empty dataset.
// GET /api/v1/charts/:kind/png
func (s *Server) handleV1ChartPNG(c *gin.Context) {
	req, ok := s.parseChartRequest(c)
	if !ok {
		return
	}
	res, d := s.load(c)

	spec, ok := buildChart(c, req, res, d)
	if !ok {
		return
	}
	if !spec.Drawable() {
		c.JSON(http.StatusOK, gin.H{"data": nil, "meta": loadMeta(res)})
		return
	}

	img, contentType, err := s.board.Draw(req.panelKey(c.Query("sort")), res.LoadedAt, func() render.Spec { return spec })
	if err != nil {
		if errors.Is(err, render.ErrUnsupportedChart) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		zap.L().Error("chart render failed", zap.String("kind", req.kind), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("X-Data-Status", string(res.Status))
	c.Data(http.StatusOK, contentType, img)
}

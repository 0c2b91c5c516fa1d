package http

// registerV1Routes sets up the v1 API.
// Groups: /api/v1/quality, /api/v1/charts, /api/v1/insights
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware())

	quality := v1.Group("/quality")
	{
		quality.GET("/records", s.handleV1Records)
		quality.GET("/years", s.handleV1Years)
		quality.GET("/series/:measure", s.handleV1Series)
		quality.GET("/snapshot/:date", s.handleV1Snapshot)
		quality.GET("/comparison", s.handleV1Comparison)
		quality.GET("/summary", s.handleV1Summary)
	}

	charts := v1.Group("/charts")
	{
		charts.GET("/:kind", s.handleV1ChartSpec)
		charts.GET("/:kind/png", s.handleV1ChartPNG)
	}

	v1.GET("/insights", s.handleV1Insights)
	v1.GET("/insights/:dataset", s.handleV1InsightsDataset)
}

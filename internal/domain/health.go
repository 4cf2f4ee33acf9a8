package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
	Detail      string `json:"detail,omitempty"`
}

// BFAMetrics is returned by GET /v1/metrics/bfa.
type BFAMetrics struct {
	UpstreamErrors     int64   `json:"upstreamErrors"`
	DroppedRecords     int64   `json:"droppedRecords"`
	DashboardsServed   int64   `json:"dashboardsServed"`
	SupersededRequests int64   `json:"supersededRequests"`
	Logins             int64   `json:"logins"`
	Logouts            int64   `json:"logouts"`
	ActiveSessions     int64   `json:"activeSessions"`
	UpstreamErrorRate  float64 `json:"upstreamErrorRate"`
	Period             string  `json:"period"`
}

// ============================================================
// Generic API Response wrappers
// ============================================================

// ListResponse wraps paginated list results.
type ListResponse[T any] struct {
	Data     []T  `json:"data"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

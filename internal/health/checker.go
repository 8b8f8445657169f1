package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckResult represents the health of a single dependency.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResult is the top-level health response.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker verifies that the service's dependencies are reachable: Postgres
// always, and the push gateway when one is configured.
type Checker struct {
	db         Pinger
	gatewayURL string
	client     *http.Client
	logger     *slog.Logger
	gauge      *prometheus.GaugeVec
}

// NewChecker creates a health checker and registers its Prometheus gauge.
// An empty gatewayURL skips the push gateway check (ENV=local).
func NewChecker(db Pinger, gatewayURL string, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "reminder",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	return &Checker{
		db:         db,
		gatewayURL: gatewayURL,
		client:     &http.Client{Timeout: 2 * time.Second},
		logger:     logger.With("component", "health"),
		gauge:      gauge,
	}
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings every dependency and reports per-check status.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult),
	}

	c.record(&result, "postgres", c.db.Ping(checkCtx))
	if c.gatewayURL != "" {
		c.record(&result, "push_gateway", c.pingGateway(checkCtx))
	}

	return result
}

func (c *Checker) record(result *HealthResult, dependency string, err error) {
	if err != nil {
		c.logger.Warn("health check failed", "dependency", dependency, "error", err)
		result.Status = "down"
		result.Checks[dependency] = CheckResult{Status: "down", Error: err.Error()}
		c.gauge.WithLabelValues(dependency).Set(0)
		return
	}
	result.Checks[dependency] = CheckResult{Status: "up"}
	c.gauge.WithLabelValues(dependency).Set(1)
}

// pingGateway treats any HTTP response as reachable — gateways commonly reject
// unauthenticated probes with 4xx, which still proves the host is up.
func (c *Checker) pingGateway(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.gatewayURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job label for this service.
const JobName = "quake_alert"

// Push sends the run's metrics to a Prometheus Pushgateway, replacing the
// previous push for the same job.
func Push(ctx context.Context, gatewayURL string, m *Metrics) error {
	if err := push.New(gatewayURL, JobName).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/deltasync/deltasync/internal/config"
	"github.com/deltasync/deltasync/internal/core/alerting"
	"github.com/deltasync/deltasync/internal/core/metrics"
	"github.com/deltasync/deltasync/internal/core/monitor"
	"github.com/deltasync/deltasync/internal/core/observability/log"
)

// ProvideCoordinator assembles the monitoring stack from the aggregate
// configuration.
func ProvideCoordinator(cfg config.Config, logger log.Log, source monitor.HealthSource) *monitor.Coordinator {
	wire.Build(
		wire.FieldsOf(new(config.Config), "Metrics", "Alerting", "Monitoring"),
		metrics.NewCollector,
		alerting.NewEngine,
		monitor.NewCoordinator,
	)
	return nil
}

package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// RegisterDBTracing adds otelgorm spans to every statement run on db.
// Query variables are never recorded: state values include store secrets.
func RegisterDBTracing(db *gorm.DB, dbSystem string) error {
	return db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbSystem),
		otelgorm.WithoutQueryVariables(),
	))
}

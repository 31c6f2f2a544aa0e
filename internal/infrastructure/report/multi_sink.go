package report

import (
	"context"
	"errors"

	labelapp "github.com/pexcode/qds-print-sdk/internal/application/labeling"
)

// MultiSink fans a result out to every sink. All sinks are called even
// when one fails; the errors are joined.
type MultiSink []labelapp.ReportSink

// Report implements labelapp.ReportSink
func (m MultiSink) Report(ctx context.Context, result *labelapp.BatchResult) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Report(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

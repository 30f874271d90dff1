package al

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// MetricSink receives per-round diagnostics. Calls are fire-and-forget: the
// loop never consumes a return value and a sink must not fail the run. The
// step argument is the labeled-subset size at the time of logging, which
// makes curves comparable across acquisition methods.
type MetricSink interface {
	LogScalars(step int, scalars map[string]float64)
	LogTable(step int, name string, columns []string, rows [][]float64)
}

// LogSink writes metrics to logrus at info level.
type LogSink struct{}

// LogScalars writes one "name=value" line per scalar.
func (LogSink) LogScalars(step int, scalars map[string]float64) {
	for name, value := range scalars {
		logrus.Infof("[size %04d] %s = %.6f", step, name, value)
	}
}

// LogTable writes the table header and one row per line at debug level,
// with a one-line info summary.
func (LogSink) LogTable(step int, name string, columns []string, rows [][]float64) {
	logrus.Infof("[size %04d] table %s: %d rows", step, name, len(rows))
	logrus.Debugf("[size %04d] %s columns: %s", step, name, strings.Join(columns, ", "))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%g", v)
		}
		logrus.Debugf("[size %04d] %s row: %s", step, name, strings.Join(cells, ", "))
	}
}

// NopSink discards all metrics.
type NopSink struct{}

func (NopSink) LogScalars(int, map[string]float64)          {}
func (NopSink) LogTable(int, string, []string, [][]float64) {}

// accuracyRows converts an accuracy curve into sink table rows.
func accuracyRows(points []AccuracyPoint) [][]float64 {
	rows := make([][]float64, len(points))
	for i, p := range points {
		rows[i] = []float64{float64(p.Step), p.Accuracy}
	}
	return rows
}

// acquisitionRows pairs selected ids with their scores for the sink.
func acquisitionRows(ids []int64, scores []float64) [][]float64 {
	rows := make([][]float64, len(ids))
	for i := range ids {
		rows[i] = []float64{float64(ids[i]), scores[i]}
	}
	return rows
}

package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"traffic-signal-sim/internal/domain"
)

// Round half away from zero to two decimals, for display only.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WriteTable prints one row per experiment in submission order.
func WriteTable(w io.Writer, results []domain.ExperimentResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := "Exp\tArrival Rate\tService Time\tCapacity\tStrategy\tAvg_Wait(s)\tThroughput\tVehicles_Served\t"
	if _, err := fmt.Fprintln(tw, header); err != nil {
		return fmt.Errorf("write table: header: %w", err)
	}

	for i, r := range results {
		_, err := fmt.Fprintf(tw, "%d\t%g\t%g\t%d\t%s\t%.2f\t%.2f\t%d\t\n",
			i+1, r.ArrivalMean, r.ServiceMean, r.Capacity, r.Strategy,
			round2(r.AvgWait), round2(r.Throughput), r.VehiclesServed,
		)
		if err != nil {
			return fmt.Errorf("write table: row %d: %w", i+1, err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: flush: %w", err)
	}
	return nil
}

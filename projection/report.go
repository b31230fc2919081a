package projection

// SystemReport summarizes a system-wide reconstruction, typically after a
// disaster recovery replay.
type SystemReport struct {
	TotalPayments int
	Succeeded     int // terminal with a successful outcome (captured, settled, refunded)
	Failed        int // terminal with a failed outcome (failed, cancelled, fraud-blocked)
	Pending       int // derived: not yet terminal
	SuccessRatio  float64
}

var successfulTerminalStatuses = map[string]struct{}{
	StatusCaptured: {},
	StatusSettled:  {},
	StatusRefunded: {},
}

// BuildSystemReport derives the aggregate report from a set of reconstructed
// snapshots. Pending is derived, not stored.
func BuildSystemReport(snapshots map[string]PaymentSnapshot) SystemReport {
	report := SystemReport{TotalPayments: len(snapshots)}

	for _, snapshot := range snapshots {
		if !snapshot.IsTerminal {
			report.Pending++
			continue
		}

		if _, ok := successfulTerminalStatuses[snapshot.CurrentStatus]; ok {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	if report.TotalPayments > 0 {
		report.SuccessRatio = float64(report.Succeeded) / float64(report.TotalPayments)
	}

	return report
}

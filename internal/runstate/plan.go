package runstate

import "time"

// Options are the command line choices that affect the mode.
type Options struct {
	// Full forces a full load and ignores any recorded state.
	Full bool

	// Days, when positive, extracts the last N days.
	Days int
}

// Plan is the extraction decided for a run.
type Plan struct {
	Mode Mode

	// Cutoff is nil for full loads.
	Cutoff *time.Time

	// Merge reports whether new lines are upserted into the existing output.
	Merge bool
}

// Decide picks the mode of a run:
//   - Full forces a full load without merge.
//   - Days > 0 extracts from midnight N days before now and merges into an
//     existing output.
//   - A recorded state plus an existing output gives an incremental run
//     from last.Timestamp minus the safety window.
//   - Anything else is a full load.
func Decide(opts Options, last *RunState, outputExists bool, safety time.Duration, now time.Time) Plan {
	switch {
	case opts.Full:
		return Plan{Mode: ModeFull}

	case opts.Days > 0:
		y, m, d := now.Date()
		cutoff := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -opts.Days)
		return Plan{Mode: ModeDays, Cutoff: &cutoff, Merge: outputExists}

	case last != nil && outputExists:
		cutoff := last.Timestamp.Add(-safety)
		return Plan{Mode: ModeIncremental, Cutoff: &cutoff, Merge: true}

	default:
		return Plan{Mode: ModeFull}
	}
}

package corpus

// Replay runs one seed file through the target and reports every test case
// path newly discovered while doing so (typically the paths testcase.Store
// reported as created during that single run). cmd/symcc-run supplies this
// by reading seed's bytes itself, using them as the symbolic arguments of a
// fresh harness, and re-running the instrumented entry point.
type Replay func(seed string) (newCases []string, err error)

// Stats summarizes one Drain call, reported back to the caller for logging.
type Stats struct {
	Generations int
	Replayed    int
	Discovered  int
}

// Drain repeatedly pops a seed from q, replays it, and feeds every newly
// discovered case back into q, until two consecutive generations discover
// nothing new — the single-process stand-in for the original helper
// script's "queue is dry" stopping condition.
func Drain(q *Queue, replay Replay) (Stats, error) {
	var stats Stats
	dryGenerations := 0
	for dryGenerations < 2 {
		seed, ok := q.Next()
		if !ok {
			break
		}
		stats.Generations++
		stats.Replayed++

		newCases, err := replay(seed)
		if err != nil {
			return stats, err
		}
		if len(newCases) == 0 {
			dryGenerations++
			continue
		}
		dryGenerations = 0
		for _, c := range newCases {
			q.Add(c)
			stats.Discovered++
		}
	}
	return stats, nil
}

package syncer

import "fmt"

// Result tracks counts and errors from a sync run.
type Result struct {
	SeasonsSynced     int
	SeasonsFailed     int
	DivisionsUpserted int
	TeamsUpserted     int
	TeamsRenamed      int
	GamesUpserted     int
	GamesUnchanged    int
	UnresolvedTeams   int
	StatsWritten      int
	StatsPending      int
	Errors            []string
}

// Add merges another Result into this one.
func (r *Result) Add(other Result) {
	r.SeasonsSynced += other.SeasonsSynced
	r.SeasonsFailed += other.SeasonsFailed
	r.DivisionsUpserted += other.DivisionsUpserted
	r.TeamsUpserted += other.TeamsUpserted
	r.TeamsRenamed += other.TeamsRenamed
	r.GamesUpserted += other.GamesUpserted
	r.GamesUnchanged += other.GamesUnchanged
	r.UnresolvedTeams += other.UnresolvedTeams
	r.StatsWritten += other.StatsWritten
	r.StatsPending += other.StatsPending
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the sync.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"seasons=%d failed_seasons=%d divisions=%d teams=%d renamed=%d games=%d unchanged_games=%d unresolved=%d stats=%d pending_stats=%d errors=%d",
		r.SeasonsSynced, r.SeasonsFailed, r.DivisionsUpserted, r.TeamsUpserted, r.TeamsRenamed,
		r.GamesUpserted, r.GamesUnchanged, r.UnresolvedTeams, r.StatsWritten, r.StatsPending,
		len(r.Errors),
	)
}

package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/store"
)

// ResolutionError means a team name has no stored identifier. The syncer
// recovers by recording the UNKNOWN sentinel.
type ResolutionError struct {
	Name     string
	SeasonID int
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no team named %q near season %d", e.Name, e.SeasonID)
}

// ResolveTeam maps a team name to an identifier using stored stats rows.
// When the name belongs to several teams, the one whose season is nearest
// the target wins; equal distances go to the lower season id, then the
// lower team id. An empty name resolves to the UNKNOWN sentinel.
func ResolveTeam(rows []store.TeamRow, name string, seasonID int) (int, error) {
	if name == "" {
		return provider.UnknownID, nil
	}

	var matches []store.TeamRow
	ids := map[int]bool{}
	for _, r := range rows {
		if r.Name == name {
			matches = append(matches, r)
			ids[r.TeamID] = true
		}
	}
	switch len(ids) {
	case 0:
		return provider.UnknownID, &ResolutionError{Name: name, SeasonID: seasonID}
	case 1:
		return matches[0].TeamID, nil
	}

	sort.Slice(matches, func(i, j int) bool {
		di, dj := distance(matches[i].SeasonID, seasonID), distance(matches[j].SeasonID, seasonID)
		if di != dj {
			return di < dj
		}
		if matches[i].SeasonID != matches[j].SeasonID {
			return matches[i].SeasonID < matches[j].SeasonID
		}
		return matches[i].TeamID < matches[j].TeamID
	})
	return matches[0].TeamID, nil
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// teamResolver caches name lookups for one season pass.
type teamResolver struct {
	store    Store
	seasonID int
	cache    map[string]int
}

func newTeamResolver(st Store, seasonID int) *teamResolver {
	return &teamResolver{store: st, seasonID: seasonID, cache: map[string]int{}}
}

func (r *teamResolver) resolve(ctx context.Context, name string) (int, error) {
	if name == "" {
		return provider.UnknownID, nil
	}
	if id, ok := r.cache[name]; ok {
		if id == provider.UnknownID {
			return id, &ResolutionError{Name: name, SeasonID: r.seasonID}
		}
		return id, nil
	}
	rows, err := r.store.ListTeams(ctx, store.TeamFilter{Name: name})
	if err != nil {
		return provider.UnknownID, fmt.Errorf("list teams named %q: %w", name, err)
	}
	id, err := ResolveTeam(rows, name, r.seasonID)
	var resErr *ResolutionError
	if err != nil && !errors.As(err, &resErr) {
		return id, err
	}
	r.cache[name] = id
	return id, err
}

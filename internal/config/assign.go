package config

import "sort"

// AssignRoundRobin spreads c.Sections across nproc peers, replicating
// Global to every peer. Sections are sorted by descending mp.weight (ties
// broken by section name), then handed out round-robin starting at rank 1
// so heavier sections spread across peers before the supervisor itself
// accumulates any. The returned slice is indexed by rank.
func (c *Config) AssignRoundRobin(nproc int) []*Config {
	sections := make([]Section, len(c.Sections))
	copy(sections, c.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].Weight != sections[j].Weight {
			return sections[i].Weight > sections[j].Weight
		}
		return sections[i].Name < sections[j].Name
	})

	assignments := make([]*Config, nproc)
	for r := range assignments {
		assignments[r] = &Config{Global: c.Global}
	}

	nextRank := 1 % nproc
	for _, sec := range sections {
		assignments[nextRank].Sections = append(assignments[nextRank].Sections, sec)
		nextRank = (nextRank + 1) % nproc
	}
	return assignments
}

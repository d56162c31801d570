// Package season orders season identifiers of the form "YYYY-YY" and answers
// "which season follows this one".
package season

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/yourusername/nba-comps/internal/models"
)

var seasonPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// lastStartYear is the latest season start that still has a four-digit
// successor.
const lastStartYear = 9998

// StartYear parses the first calendar year of a "YYYY-YY" season and checks
// that the suffix is the following year.
func StartYear(id string) (int, error) {
	m := seasonPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidSeasonID, id)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if (start+1)%100 != end {
		return 0, fmt.Errorf("%w: %q does not span consecutive years", models.ErrInvalidSeasonID, id)
	}
	return start, nil
}

// Next returns the season starting one year after id.
func Next(id string) (string, error) {
	start, err := StartYear(id)
	if err != nil {
		return "", err
	}
	if start > lastStartYear {
		return "", fmt.Errorf("%w: no season follows %q", models.ErrInvalidSeasonID, id)
	}
	return Format(start + 1), nil
}

// Format renders the season starting in year.
func Format(year int) string {
	return fmt.Sprintf("%04d-%02d", year, (year+1)%100)
}

// Chain maps each known season to its chronological successor.
type Chain struct {
	seasons []string
	pos     map[string]int
}

// NewChain builds a chain from season identifiers in any order, dropping
// duplicates. Seasons are ordered by start year. Gaps are allowed: the
// successor is the next known season.
func NewChain(ids []string) (*Chain, error) {
	years := make(map[string]int, len(ids))
	for _, id := range ids {
		if _, ok := years[id]; ok {
			continue
		}
		y, err := StartYear(id)
		if err != nil {
			return nil, err
		}
		years[id] = y
	}

	c := &Chain{
		seasons: make([]string, 0, len(years)),
		pos:     make(map[string]int, len(years)),
	}
	for id := range years {
		c.seasons = append(c.seasons, id)
	}
	sort.Slice(c.seasons, func(i, j int) bool {
		return years[c.seasons[i]] < years[c.seasons[j]]
	})
	for i, id := range c.seasons {
		c.pos[id] = i
	}

	return c, nil
}

// WithHorizon returns a chain extended by the season following the last
// known one. An empty chain is returned unchanged.
func (c *Chain) WithHorizon() (*Chain, error) {
	if len(c.seasons) == 0 {
		return c, nil
	}
	next, err := Next(c.seasons[len(c.seasons)-1])
	if err != nil {
		return nil, fmt.Errorf("cannot extend season chain: %w", err)
	}
	return NewChain(append(c.Seasons(), next))
}

// Successor returns the season after id.
func (c *Chain) Successor(id string) (string, error) {
	i, ok := c.pos[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", models.ErrUnknownSeason, id)
	}
	if i == len(c.seasons)-1 {
		return "", fmt.Errorf("%w: %s is the last known season", models.ErrNoSuccessorSeason, id)
	}
	return c.seasons[i+1], nil
}

// Contains reports whether id is part of the chain.
func (c *Chain) Contains(id string) bool {
	_, ok := c.pos[id]
	return ok
}

// Seasons returns the chain in chronological order.
func (c *Chain) Seasons() []string {
	out := make([]string, len(c.seasons))
	copy(out, c.seasons)
	return out
}

// Last returns the latest season, or "" for an empty chain.
func (c *Chain) Last() string {
	if len(c.seasons) == 0 {
		return ""
	}
	return c.seasons[len(c.seasons)-1]
}

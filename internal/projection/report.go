package projection

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/yourusername/nba-comps/internal/models"
)

// RoundedStats returns the projected stats rounded half away from zero to
// places decimal places, keyed by stat name.
func RoundedStats(p *models.ProjectionResult, places int32) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(p.Stats))
	for name, v := range p.Stats {
		out[name] = decimal.NewFromFloat(v).Round(places)
	}
	return out
}

// WriteReport renders a projection as a human-readable table.
func WriteReport(w io.Writer, p *models.ProjectionResult, places int32) error {
	name := p.PlayerName
	if name == "" {
		name = fmt.Sprintf("player %d", p.PlayerID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Projection for %s: %s -> %s (k=%d, %d neighbors used)\n\n",
		name, p.BaseSeason, p.TargetSeason, p.K, len(p.Neighbors))

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	rounded := RoundedStats(p, places)
	fmt.Fprintln(tw, "STAT\tPROJECTED")
	for _, s := range models.AllStats() {
		fmt.Fprintf(tw, "%s\t%s\n", s, rounded[s.String()].StringFixed(places))
	}
	tw.Flush()

	b.WriteString("\n")
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NEIGHBOR\tSEASON\tNEXT\tDISTANCE\tWEIGHT")
	for _, n := range p.Neighbors {
		label := n.PlayerName
		if label == "" {
			label = fmt.Sprintf("%d", n.Identity.PlayerID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", label, n.Identity.SeasonID, n.SuccessorSeason,
			decimal.NewFromFloat(n.Distance).StringFixed(4),
			decimal.NewFromFloat(n.Weight).StringFixed(2))
	}
	tw.Flush()

	_, err := io.WriteString(w, b.String())
	return err
}

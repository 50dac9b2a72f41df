package notifier

import (
	"fmt"
	"strings"
	"time"

	"props_edge_backend/models"
)

// FormatTopPicks renders one league's digest as a Telegram HTML message.
func FormatTopPicks(league string, picks []models.Pick) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎯 <b>Top %s picks</b> | %s\n\n",
		strings.ToUpper(league), time.Now().Format("2006-01-02")))

	if len(picks) == 0 {
		b.WriteString("No positive-edge candidates on today's board.\n")
		return b.String()
	}

	for i, p := range picks {
		edge := 0.0
		if p.Edge != nil {
			edge = *p.Edge
		}
		b.WriteString(fmt.Sprintf("%d. <b>%s</b> %s o%.1f (%+d)\n", i+1, p.PlayerName, p.Prop, p.Line, p.American))
		b.WriteString(fmt.Sprintf("   trend %.0f%% | edge %+.1f%% | %s %s\n",
			p.PTrend*100, edge*100, p.Tag, formatSpark(p.Spark)))
	}
	return b.String()
}

// formatSpark renders the boolean trend window, oldest to newest.
func formatSpark(spark []bool) string {
	if len(spark) == 0 {
		return ""
	}
	var b strings.Builder
	for _, hit := range spark {
		if hit {
			b.WriteString("▮")
		} else {
			b.WriteString("▯")
		}
	}
	return b.String()
}

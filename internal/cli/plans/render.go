package plans

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/utils"
)

func title(titles map[string]string, id string) string {
	if t, ok := titles[id]; ok && t != "" {
		return t
	}
	return id + " (unknown task)"
}

// days lists the distinct block days of run in order.
func days(run models.PlanRun) []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range run.Blocks {
		if d := b.Day(); !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

// renderRun prints every planned day followed by overflow and advisories.
func renderRun(run models.PlanRun, titles map[string]string) string {
	var b strings.Builder
	if len(run.Blocks) == 0 {
		b.WriteString("  No tasks scheduled\n")
	}
	for _, day := range days(run) {
		b.WriteString(cli.Heading(day) + "\n")
		b.WriteString(renderBlocks(run.BlocksOn(day), titles) + "\n")
	}
	if len(run.Overflow) > 0 {
		b.WriteString("\n" + cli.Heading("Overflow") + "\n")
		b.WriteString(renderOverflow(run.Overflow, titles) + "\n")
	}
	for _, a := range run.Advisories {
		b.WriteString(cli.Warn(a.Message) + "\n")
	}
	return b.String()
}

func renderBlocks(blocks []models.ScheduledBlock, titles map[string]string) string {
	rows := make([][]string, 0, len(blocks))
	for _, bl := range blocks {
		note := ""
		if bl.UserEdited {
			note = "edited"
		}
		rows = append(rows, []string{
			utils.FormatSpan(bl.Start, bl.End),
			title(titles, bl.TaskID),
			strconv.Itoa(bl.Minutes()),
			strconv.FormatFloat(bl.Score, 'f', 2, 64),
			note,
		})
	}
	return cli.Table([]string{"Time", "Task", "Min", "Score", ""}, rows)
}

func renderOverflow(overflow []models.OverflowEntry, titles map[string]string) string {
	rows := make([][]string, 0, len(overflow))
	for _, o := range overflow {
		rows = append(rows, []string{title(titles, o.TaskID), string(o.Reason)})
	}
	return cli.Table([]string{"Task", "Reason"}, rows)
}

func renderLog(entries []models.LogEntry, titles map[string]string) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		task := title(titles, e.TaskID)
		if _, known := titles[e.TaskID]; !known && e.Decision == models.DecisionRejected {
			// mutation targets may be block or event ids
			task = e.TaskID
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Seq),
			task,
			string(e.Decision),
			formatSlots(e.Slots),
			strconv.FormatFloat(e.Score, 'f', 2, 64),
			e.Reason,
		})
	}
	return cli.Table([]string{"#", "Task", "Decision", "Slots", "Score", "Reason"}, rows)
}

func formatSlots(slots []models.SlotRange) string {
	if len(slots) == 0 {
		return "-"
	}
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = s.Start.Format("01-02 ") + utils.FormatSpan(s.Start, s.End)
	}
	return strings.Join(parts, ", ")
}

// agendaItem is one row of the day view: a block or a fixed interval.
type agendaItem struct {
	start, end time.Time
	label      string
	kind       string
}

func renderAgenda(items []agendaItem) string {
	sort.SliceStable(items, func(i, j int) bool { return items[i].start.Before(items[j].start) })
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{utils.FormatSpan(it.start, it.end), it.label, it.kind})
	}
	return cli.Table([]string{"Time", "Item", ""}, rows)
}

func revisionLine(run models.PlanRun, loc *time.Location) string {
	created := run.CreatedAt
	if t, err := time.Parse(time.RFC3339, run.CreatedAt); err == nil {
		created = t.In(loc).Format(constants.DateTimeFormat)
	}
	return cli.Muted(fmt.Sprintf("revision %d, planned %s from %s", run.Revision, created, run.Today))
}

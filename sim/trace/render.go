package trace

import (
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Render writes st as one line per record, in recording order. The output is
// deterministic for a deterministic run and is meant for diffs and golden files.
func Render(w io.Writer, st *SimulationTrace) error {
	if st == nil {
		return nil
	}
	type line struct {
		index int
		text  string
	}
	lines := make([]line, 0, len(st.Activations)+len(st.Emissions)+len(st.Deliveries))

	for _, a := range st.Activations {
		text := fmt.Sprintf("t=%s activate %s (%s)", formatClock(a.Clock), a.Model, a.Source)
		if a.Source == SourceInput {
			text = fmt.Sprintf("t=%s activate %s (%s %s)", formatClock(a.Clock), a.Model, a.Source, a.Port)
		}
		lines = append(lines, line{a.Index, text})
	}
	for _, e := range st.Emissions {
		target := "boundary"
		if e.Fanout > 0 {
			target = strconv.Itoa(e.Fanout)
		}
		lines = append(lines, line{e.Index,
			fmt.Sprintf("t=%s emit %s.%s = %v -> %s", formatClock(e.Clock), e.Model, e.Port, e.Value, target)})
	}
	for _, d := range st.Deliveries {
		from := "external"
		if d.From != "" {
			from = d.From + "." + d.FromPort
		}
		lines = append(lines, line{d.Index,
			fmt.Sprintf("t=%s deliver %s -> %s.%s", formatClock(d.Clock), from, d.To, d.ToPort)})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].index < lines[j].index })

	level := st.Config.Level
	if level == "" {
		level = TraceLevelNone
	}
	if _, err := fmt.Fprintf(w, "# level=%s records=%d\n", level, len(lines)); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := io.WriteString(w, l.text+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func formatClock(c float64) string {
	return strconv.FormatFloat(c, 'g', -1, 64)
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/coregx/pcre"
	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"github.com/samber/lo"
	"golang.org/x/term"
)

// Output formats.
const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

type mode int

const (
	modeMatch mode = iota
	modeSub
)

// record is the result for one subject.
type record struct {
	Source  string        `json:"source" yaml:"source"`
	Line    int           `json:"line" yaml:"line"`
	Subject string        `json:"subject" yaml:"subject"`
	Matches []matchRecord `json:"matches,omitempty" yaml:"matches,omitempty"`
	Result  *string       `json:"result,omitempty" yaml:"result,omitempty"`
}

type matchRecord struct {
	Start  int           `json:"start" yaml:"start"`
	End    int           `json:"end" yaml:"end"`
	Text   string        `json:"text" yaml:"text"`
	Groups []groupRecord `json:"groups,omitempty" yaml:"groups,omitempty"`
}

type groupRecord struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Set   bool   `json:"set" yaml:"set"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Text  string `json:"text" yaml:"text"`
}

func newMatchRecord(m *pcre.MatchResult) matchRecord {
	return matchRecord{
		Start: m.Start(),
		End:   m.End(),
		Text:  m.String(),
		Groups: lo.Map(m.Groups()[1:], func(g pcre.MatchGroup, _ int) groupRecord {
			return groupRecord{
				Index: g.Index,
				Name:  g.Name,
				Set:   g.Matched(),
				Start: g.Start,
				End:   g.End,
				Text:  g.Text,
			}
		}),
	}
}

func (g groupRecord) label() string {
	if g.Name != "" {
		return "$" + strconv.Itoa(g.Index) + "<" + g.Name + ">"
	}
	return "$" + strconv.Itoa(g.Index)
}

func (g groupRecord) span() string {
	if !g.Set {
		return "unset"
	}
	return fmt.Sprintf("[%d,%d)", g.Start, g.End)
}

// printer renders records in one output format.
type printer struct {
	w         io.Writer
	format    string
	highlight lipgloss.Style
}

func newPrinter(w io.Writer, format string, color bool) (*printer, error) {
	switch format {
	case formatText, formatTable, formatJSON, formatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &printer{
		w:      w,
		format: format,
		highlight: r.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Inline(true).
			TabWidth(lipgloss.NoTabConversion),
	}, nil
}

// printer returns the printer selected by --output and --color.
func (a *App) printer() (*printer, error) {
	color, err := a.colorEnabled()
	if err != nil {
		return nil, err
	}
	return newPrinter(a.Out, a.v.GetString("output"), color)
}

func (a *App) colorEnabled() (bool, error) {
	switch c := a.v.GetString("color"); c {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		f, ok := a.Out.(interface{ Fd() uintptr })
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("unknown color mode %q", c)
	}
}

func (p *printer) print(records []record, m mode) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case formatYAML:
		b, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = p.w.Write(b)
		return err
	case formatTable:
		if m == modeSub {
			_, err := fmt.Fprintln(p.w, renderSubTable(records))
			return err
		}
		_, err := fmt.Fprintln(p.w, renderMatchTable(records))
		return err
	}

	multi := len(lo.Uniq(lo.Map(records, func(r record, _ int) string { return r.Source }))) > 1
	var b strings.Builder
	for _, r := range records {
		if multi {
			fmt.Fprintf(&b, "%s:%d: ", r.Source, r.Line)
		}
		if m == modeSub {
			b.WriteString(lo.FromPtrOr(r.Result, r.Subject))
			b.WriteByte('\n')
			continue
		}
		b.WriteString(p.highlighted(r))
		b.WriteByte('\n')
		for _, mr := range r.Matches {
			if len(mr.Groups) == 0 {
				continue
			}
			parts := lo.Map(mr.Groups, func(g groupRecord, _ int) string {
				if !g.Set {
					return g.label() + "=<unset>"
				}
				return g.label() + "=" + strconv.Quote(g.Text)
			})
			b.WriteString("  " + strings.Join(parts, " ") + "\n")
		}
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// highlighted returns the subject with every non-empty match styled.
func (p *printer) highlighted(r record) string {
	var b strings.Builder
	last := 0
	for _, m := range r.Matches {
		b.WriteString(r.Subject[last:m.Start])
		if m.End > m.Start {
			b.WriteString(p.highlight.Render(r.Subject[m.Start:m.End]))
		}
		last = m.End
	}
	b.WriteString(r.Subject[last:])
	return b.String()
}

var matchHeader = table.Row{
	"Source",
	"Line",
	"Match",
	"Group",
	"Span",
	"Text",
}

func renderMatchTable(records []record) string {
	t := table.NewWriter()
	t.AppendHeader(matchHeader)
	for _, r := range records {
		for i, m := range r.Matches {
			t.AppendRow(table.Row{r.Source, r.Line, i + 1, "$0", fmt.Sprintf("[%d,%d)", m.Start, m.End), m.Text})
			for _, g := range m.Groups {
				t.AppendRow(table.Row{"", "", "", g.label(), g.span(), g.Text})
			}
		}
	}
	return t.Render()
}

var subHeader = table.Row{
	"Source",
	"Line",
	"Subject",
	"Result",
}

func renderSubTable(records []record) string {
	t := table.NewWriter()
	t.AppendHeader(subHeader)
	for _, r := range records {
		t.AppendRow(table.Row{r.Source, r.Line, r.Subject, lo.FromPtrOr(r.Result, r.Subject)})
	}
	return t.Render()
}

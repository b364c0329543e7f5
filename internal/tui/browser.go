// Package tui is an interactive browser over saved fit runs: a run list,
// per-run observable traces and the fitted coefficients.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/qfit/internal/hamiltonian"
	"github.com/san-kum/qfit/internal/storage"
)

const (
	stateList = iota
	stateDetail
)

type browser struct {
	store *storage.Store
	runs  []storage.RunMetadata

	state  int
	cursor int

	meta    storage.RunMetadata
	cols    []storage.Column
	colIdx  int
	loadErr error

	width, height int
}

// Run opens the browser over the given data directory. The terminal
// capability error from bubbletea surfaces here, at the point of use.
func Run(dataDir string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	m := &browser{store: st, runs: runs, width: 80, height: 24}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (b *browser) Init() tea.Cmd { return nil }

func (b *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return b.handleKey(msg)
	}
	return b, nil
}

func (b *browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch b.state {
	case stateList:
		switch msg.String() {
		case "q", "ctrl+c":
			return b, tea.Quit
		case "up", "k":
			if b.cursor > 0 {
				b.cursor--
			}
		case "down", "j":
			if b.cursor < len(b.runs)-1 {
				b.cursor++
			}
		case "enter":
			if len(b.runs) > 0 {
				b.openRun(b.runs[b.cursor].ID)
			}
		}
	case stateDetail:
		switch msg.String() {
		case "q", "ctrl+c":
			return b, tea.Quit
		case "esc":
			b.state = stateList
		case "left", "h":
			if b.colIdx > 0 {
				b.colIdx--
			}
		case "right", "l":
			if b.colIdx < len(b.cols)-2 {
				b.colIdx++
			}
		}
	}
	return b, nil
}

func (b *browser) openRun(runID string) {
	b.meta, b.loadErr = b.store.Load(runID)
	if b.loadErr == nil {
		b.cols, b.loadErr = b.store.LoadColumns(runID)
	}
	b.colIdx = 0
	b.state = stateDetail
}

func (b *browser) View() string {
	switch b.state {
	case stateDetail:
		return b.detailView()
	default:
		return b.listView()
	}
}

func (b *browser) listView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("qfit runs") + "\n\n")

	if len(b.runs) == 0 {
		sb.WriteString(dim.Render("no saved runs") + "\n")
	}
	for i, run := range b.runs {
		line := fmt.Sprintf("%-24s %-4s %s", run.ID, run.Kind, run.Timestamp.Format("2006-01-02 15:04:05"))
		if i == b.cursor {
			sb.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			sb.WriteString(white.Render("  "+line) + "\n")
		}
	}

	sb.WriteString("\n" + dim.Render("up/down: select   enter: open   q: quit"))
	return sb.String()
}

func (b *browser) detailView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("run "+b.meta.ID) + "\n\n")

	if b.loadErr != nil {
		sb.WriteString(yellow.Render(fmt.Sprintf("load error: %v", b.loadErr)) + "\n")
		sb.WriteString("\n" + dim.Render("esc: back   q: quit"))
		return sb.String()
	}

	// data columns start after the time column
	if len(b.cols) > 1 {
		col := b.cols[b.colIdx+1]
		graph := asciigraph.Plot(col.Values,
			asciigraph.Height(min(12, b.height-14)),
			asciigraph.Width(min(72, b.width-8)),
			asciigraph.Caption(fmt.Sprintf("%s vs time [%s]", col.Name, b.meta.TimeUnit)),
		)
		sb.WriteString(panelStyle.Render(graph) + "\n\n")
	}

	sb.WriteString(b.summary())
	sb.WriteString("\n" + dim.Render("left/right: trace   esc: back   q: quit"))
	return sb.String()
}

func (b *browser) summary() string {
	var sb strings.Builder
	if len(b.meta.Rates) > 0 {
		sb.WriteString(cyan.Render("zz rates") + "\n")
		for i, q := range b.meta.Qubits {
			sb.WriteString(fmt.Sprintf("  Q%d: %s\n", q, green.Render(fmt.Sprintf("%.6f", b.meta.Rates[i]))))
		}
	}
	if len(b.meta.Hamiltonian) > 0 {
		sb.WriteString(cyan.Render("hamiltonian terms") + "\n")
		for _, q := range b.meta.Qubits {
			ham := b.meta.Hamiltonian[q]
			sb.WriteString(magenta.Render(fmt.Sprintf("  Q%d", q)))
			for _, term := range hamiltonian.Terms {
				sb.WriteString(fmt.Sprintf("  %s=%s", term, green.Render(fmt.Sprintf("%.6f", ham[term]))))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

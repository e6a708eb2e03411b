// Command mutationtree-repl is an interactive demo driver for the
// mutationtree package, adapting the teacher's bare stdin/stdout REPL
// loop into a small cobra command tree with a bubbletea TUI for the
// interactive "run" mode.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nodeledger/mutationtree"
)

func main() {
	root := &cobra.Command{
		Use:   "mutationtree-repl",
		Short: "Interactive and scripted demos of the mutationtree tracker",
	}
	root.AddCommand(newRunCommand())
	root.AddCommand(newReplayCommand())
	root.AddCommand(newBenchCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Launch an interactive TUI over a scripted rearrangement scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(newReplModel())
			_, err := p.Run()
			return err
		},
	}
}

func newReplayCommand() *cobra.Command {
	var steps int
	c := &cobra.Command{
		Use:   "replay",
		Short: "Run the built-in scenario headlessly and print a summary of the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newReplModel()
			for i := 0; i < steps && m.step < len(m.script); i++ {
				m.advance()
			}
			fmt.Println(m.summary())
			return nil
		},
	}
	c.Flags().IntVar(&steps, "steps", len(defaultScript()), "number of scripted steps to replay")
	return c
}

func newBenchCommand() *cobra.Command {
	var ops int
	c := &cobra.Command{
		Use:   "bench",
		Short: "Measure synthetic record_children throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			runBench(ops)
			return nil
		},
	}
	c.Flags().IntVar(&ops, "ops", 100000, "number of move operations (two record_children calls each)")
	return c
}

// scriptStep is one scripted mutation against the demo tree, expressed in
// terms of node indices into model.handles.
type scriptStep struct {
	label    string
	parent   int
	removed  []int
	added    []int
	prevIdx  int // -1 means None
	nextIdx  int // -1 means None
}

// defaultScript reproduces spec §8 Scenario 1: root = [A,B,C,D]; move A
// from the front to the back.
func defaultScript() []scriptStep {
	return []scriptStep{
		{label: "remove A from front", parent: 0, removed: []int{1}, added: nil, prevIdx: -1, nextIdx: 2},
		{label: "append A at back", parent: 0, removed: nil, added: []int{1}, prevIdx: 4, nextIdx: -1},
	}
}

type replModel struct {
	tree     *demoTree
	tracker  *mutationtree.Tracker[uuid.UUID]
	handles  []uuid.UUID // index 0 is root; 1..4 are A,B,C,D
	script   []scriptStep
	step     int
	log      []string
	logView  viewport.Model
	ready    bool
}

func newReplModel() *replModel {
	tree := newDemoTree()
	root := tree.newNode()
	a, b, c, d := tree.newNode(), tree.newNode(), tree.newNode(), tree.newNode()
	_ = tree.Append(root, a, b, c, d)

	tracker := mutationtree.NewTracker[uuid.UUID](tree, tree, mutationtree.TrackerOptions{DebugSelfCheck: true})

	return &replModel{
		tree:    tree,
		tracker: tracker,
		handles: []uuid.UUID{root, a, b, c, d},
		script:  defaultScript(),
		log:     []string{"ready: root = [A,B,C,D]"},
	}
}

// refreshLogView pushes the accumulated log lines into the scrolling
// viewport and jumps the view to the bottom, so the most recent step is
// always visible without the user having to scroll after each advance.
func (m *replModel) refreshLogView() {
	if !m.ready {
		return
	}
	m.logView.SetContent(strings.Join(m.log, "\n"))
	m.logView.GotoBottom()
}

func (m *replModel) sibling(idx int) mutationtree.Sibling[uuid.UUID] {
	if idx < 0 {
		return mutationtree.NoneSibling[uuid.UUID]()
	}
	return mutationtree.HandleSibling(m.handles[idx])
}

func (m *replModel) handlesOf(idxs []int) []uuid.UUID {
	out := make([]uuid.UUID, len(idxs))
	for i, idx := range idxs {
		out[i] = m.handles[idx]
	}
	return out
}

func (m *replModel) advance() {
	if m.step >= len(m.script) {
		return
	}
	s := m.script[m.step]
	parent := m.handles[s.parent]
	removed := m.handlesOf(s.removed)
	added := m.handlesOf(s.added)

	// Mirror the change into the live tree first, the way a real
	// observer callback fires after the DOM mutation already happened.
	for _, h := range removed {
		_ = m.tree.Remove(h)
	}
	if len(added) > 0 {
		if s.nextIdx >= 0 {
			_ = m.tree.InsertBefore(m.handles[s.nextIdx], added...)
		} else {
			_ = m.tree.Append(parent, added...)
		}
	}

	if err := m.tracker.RecordChildren(parent, removed, added, m.sibling(s.prevIdx), m.sibling(s.nextIdx)); err != nil {
		m.log = append(m.log, fmt.Sprintf("step %d (%s): error: %v", m.step+1, s.label, err))
	} else {
		m.log = append(m.log, fmt.Sprintf("step %d: %s", m.step+1, s.label))
	}
	m.step++
	m.refreshLogView()
}

func (m *replModel) summary() string {
	root := m.handles[0]
	rng, err := m.tracker.RangeOf(&root)
	mutated := m.tracker.Mutated(&root)
	out := fmt.Sprintf("mutated(root)=%v", mutated)
	if err != nil {
		out += fmt.Sprintf(" range-error=%v", err)
	} else if !rng.IsNull() {
		out += " range=non-null"
	} else {
		out += " range=null"
	}
	return out
}

func (m *replModel) Init() tea.Cmd { return nil }

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 3
		if !m.ready {
			m.logView = viewport.New(msg.Width, msg.Height-headerHeight)
			m.ready = true
			m.refreshLogView()
		} else {
			m.logView.Width = msg.Width
			m.logView.Height = msg.Height - headerHeight
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "n":
			m.advance()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	logStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func (m *replModel) View() string {
	if !m.ready {
		return "initializing…"
	}
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render("mutationtree repl — space/n to advance, arrows to scroll log, q to quit"))
	fmt.Fprintln(&b, m.summary())
	fmt.Fprintln(&b, logStyle.Render(m.logView.View()))
	if m.step >= len(m.script) {
		fmt.Fprintln(&b, "scenario complete")
	}
	return b.String()
}

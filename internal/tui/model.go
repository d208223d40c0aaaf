// Package tui implements the interactive terminal client: a prefecture
// checklist, a category selector, and the derived population table.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pandanoir/popviz/internal/chart"
	"github.com/pandanoir/popviz/internal/logger"
	"github.com/pandanoir/popviz/internal/schema"
	"github.com/pandanoir/popviz/internal/viewmodel"
)

const placeholderText = "表示したい都道府県を選択してください"

// Fetcher is what the model needs from the API client.
type Fetcher interface {
	viewmodel.Fetcher
	Prefectures(ctx context.Context) ([]schema.Prefecture, error)
}

// Messages.

type prefecturesMsg struct {
	prefectures []schema.Prefecture
}

type prefecturesErrMsg struct {
	err error
}

type syncedMsg struct{}

// Model is the bubbletea model for the client.
type Model struct {
	client Fetcher
	vm     *viewmodel.ViewModel
	logger *logger.Logger

	spinner     spinner.Model
	prefectures []schema.Prefecture
	names       map[int]string

	cursor  int
	loaded  bool
	fatal   error
	width   int
	height  int
	syncing int
}

// NewModel creates the initial model. The prefecture list loads in Init; the
// view model derives on every selection change.
func NewModel(client Fetcher, log *logger.Logger) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		client:  client,
		vm:      viewmodel.New(client, log.Logger),
		logger:  log,
		spinner: sp,
		names:   make(map[int]string),
	}
}

// Init starts the prefecture list fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadPrefecturesCmd())
}

func (m Model) loadPrefecturesCmd() tea.Cmd {
	return func() tea.Msg {
		prefs, err := m.client.Prefectures(context.Background())
		if err != nil {
			return prefecturesErrMsg{err: err}
		}
		return prefecturesMsg{prefectures: prefs}
	}
}

func (m Model) syncCmd() tea.Cmd {
	return func() tea.Msg {
		m.vm.Sync(context.Background())
		return syncedMsg{}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case prefecturesMsg:
		m.loaded = true
		m.prefectures = msg.prefectures
		for _, p := range msg.prefectures {
			m.names[p.Code] = p.Name
		}
		return m, nil

	case prefecturesErrMsg:
		// The whole view depends on the list; render the failure state
		// and stop issuing fetches.
		m.fatal = msg.err
		return m, nil

	case syncedMsg:
		m.syncing--
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.prefectures)-1 {
			m.cursor++
		}
		return m, nil

	case " ", "enter":
		if m.fatal != nil || !m.loaded || len(m.prefectures) == 0 {
			return m, nil
		}
		m.vm.Toggle(m.prefectures[m.cursor].Code)
		m.syncing++
		return m, m.syncCmd()

	case "tab", "c":
		if m.fatal != nil {
			return m, nil
		}
		next := (int(m.vm.Selection().CategoryIndex()) + 1) % schema.NumCategories
		m.vm.SetCategory(next)
		m.syncing++
		return m, m.syncCmd()
	}

	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// View renders the page.
func (m Model) View() string {
	if m.fatal != nil {
		return errorStyle.Render("都道府県一覧を取得できませんでした") +
			"\n" + m.fatal.Error() + "\n" + helpStyle.Render("q: quit") + "\n"
	}
	if !m.loaded {
		return m.spinner.View() + " loading...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("都道府県別 人口推移"))
	b.WriteString("\n\n")

	sel := m.vm.Selection()
	b.WriteString(fmt.Sprintf("category: %s (%s)  ", sel.CategoryIndex().Label(), sel.CategoryIndex().Name()))
	b.WriteString(helpStyle.Render("tab: switch"))
	b.WriteString("\n\n")

	b.WriteString(m.renderPrefectureList(sel))
	b.WriteString("\n")
	b.WriteString(m.renderChart(sel))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: move  space: toggle  q: quit"))
	b.WriteString("\n")

	return b.String()
}

// renderPrefectureList shows a window of checkboxes around the cursor.
func (m Model) renderPrefectureList(sel viewmodel.Selection) string {
	const window = 10

	start := 0
	if m.cursor >= window {
		start = m.cursor - window + 1
	}
	end := min(start+window, len(m.prefectures))

	var b strings.Builder
	for i := start; i < end; i++ {
		p := m.prefectures[i]

		check := "[ ]"
		if sel.Has(p.Code) {
			check = "[x]"
		}

		line := fmt.Sprintf("%s %s", check, p.Name)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		if sel.Has(p.Code) {
			line = lipgloss.NewStyle().Foreground(chart.SeriesColor(p.Code)).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderChart(sel viewmodel.Selection) string {
	if sel.Empty() {
		return placeholderText + "\n"
	}

	ds := m.vm.Dataset()
	stale := m.syncing > 0 || m.vm.Stale()

	if ds.Empty() {
		if stale {
			return m.spinner.View() + " loading...\n"
		}
		// Every selected prefecture failed and was omitted.
		return placeholderText + "\n"
	}

	out := chart.Render(ds, chart.Options{Names: m.names, Width: m.width, Stale: stale})
	if stale {
		out += m.spinner.View() + " recomputing...\n"
	}
	return out
}

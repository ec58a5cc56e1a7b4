// Package review provides an interactive terminal UI for triaging freshly
// ingested postings into the application tracker.
package review

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

// Lines per posting item in the list view (title + subtitle + blank separator).
const postingItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	postingTitleStyle = lipgloss.NewStyle().
				Bold(true)

	postingSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	scoreHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	scoreMidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	scoreLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// Tracker applies review decisions to the application tracker.
type Tracker interface {
	SetStatus(postingID int64, status model.Status, reason string) (model.Application, error)
}

// statusAppliedMsg is sent when an async status update completes.
type statusAppliedMsg struct {
	postingID int64
	status    model.Status
	err       error
}

type reviewModel struct {
	postings []model.Posting
	tracker  Tracker

	listViewport   viewport.Model
	detailViewport viewport.Model
	cursor         int
	width          int
	height         int
	ready          bool

	view     viewState
	flash    string
	errMsg   string
	reviewed int
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case statusAppliedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("update failed: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.flash = fmt.Sprintf("marked %s", msg.status)
		m.reviewed++
		m.removePosting(msg.postingID)
		m.view = viewList
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		return m.openDetailView()
	case "a":
		return m.setStatus(model.StatusApplied)
	case "x":
		return m.setStatus(model.StatusNotInterested)
	case "r":
		return m.setStatus(model.StatusRejected)
	case "o":
		if p, ok := m.current(); ok {
			openURL(p.URL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "a":
		return m.setStatus(model.StatusApplied)
	case "x":
		return m.setStatus(model.StatusNotInterested)
	case "r":
		return m.setStatus(model.StatusRejected)
	case "o":
		if p, ok := m.current(); ok {
			openURL(p.URL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) setStatus(status model.Status) (tea.Model, tea.Cmd) {
	p, ok := m.current()
	if !ok {
		return m, nil
	}
	tracker := m.tracker
	id := p.ID
	return m, func() tea.Msg {
		_, err := tracker.SetStatus(id, status, "")
		return statusAppliedMsg{postingID: id, status: status, err: err}
	}
}

func (m reviewModel) current() (model.Posting, bool) {
	if len(m.postings) == 0 {
		return model.Posting{}, false
	}
	return m.postings[m.cursor], true
}

func (m *reviewModel) removePosting(id int64) {
	for i := range m.postings {
		if m.postings[i].ID == id {
			m.postings = append(m.postings[:i], m.postings[i+1:]...)
			break
		}
	}
	m.cursor = clamp(m.cursor, 0, max(len(m.postings)-1, 0))
}

func (m *reviewModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.postings)-1, 0))
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *reviewModel) ensureCursorVisible() {
	cursorTop := m.cursor * postingItemHeight
	cursorBottom := cursorTop + postingItemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m reviewModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.postings) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *reviewModel) recalcLayout() {
	// Header (1) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	width := max(m.width-2, 20)
	height := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.listViewport.Width = width
		m.listViewport.Height = height
	}
	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.listViewport.SetContent(renderPostings(m.postings, m.cursor))
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m reviewModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf(" Unreviewed Postings (%d)", len(m.postings)))
	pane := borderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())

	statusText := fmt.Sprintf(" %d left | %d reviewed    ↑/↓ cursor  Enter detail  a applied  x not interested  r rejected  o open  q quit",
		len(m.postings), m.reviewed)
	if m.flash != "" {
		statusText = " " + flashStyle.Render(m.flash) + statusText
	}
	if m.errMsg != "" {
		statusText = " " + errorStyle.Render(m.errMsg)
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return header + "\n" + pane + "\n" + statusBar
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Posting Details")
	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())

	statusText := " a applied  x not interested  r rejected  o open URL  esc back  ↑/↓ scroll  q quit"
	if m.errMsg != "" {
		statusText = " " + errorStyle.Render(m.errMsg)
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) renderDetail() string {
	p, ok := m.current()
	if !ok {
		return "  (nothing left to review)"
	}

	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", p.Title)
	addField("Company", p.Company)
	addField("Location", p.Location)
	addField("Source", p.Source)
	if p.SalaryMin != nil && p.SalaryMax != nil {
		addField("Salary", fmt.Sprintf("$%d - $%d", *p.SalaryMin, *p.SalaryMax))
	}
	if p.PostedDate != nil {
		addField("Posted", p.PostedDate.Format("2006-01-02"))
	}

	b.WriteByte('\n')
	if p.MatchScore != nil {
		b.WriteString(detailLabelStyle.Render("Match"))
		b.WriteString(scoreStyle(*p.MatchScore).Render(fmt.Sprintf("%d%%", *p.MatchScore)))
		b.WriteByte('\n')
		if p.MatchExplanation != nil {
			wrapWidth := max(m.width-8, 20)
			b.WriteString(descBodyStyle.Render(wordWrap(*p.MatchExplanation, wrapWidth)))
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	addField("URL", p.URL)

	if p.Description != "" {
		wrapWidth := max(m.width-8, 20)
		b.WriteByte('\n')
		b.WriteString(descBodyStyle.Render(wordWrap(p.Description, wrapWidth)))
		b.WriteByte('\n')
	}

	return b.String()
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return scoreHighStyle
	case score >= 60:
		return scoreMidStyle
	default:
		return scoreLowStyle
	}
}

func renderPostings(postings []model.Posting, cursor int) string {
	if len(postings) == 0 {
		return "  (nothing left to review)"
	}

	var b strings.Builder
	for i, p := range postings {
		titleSt := postingTitleStyle
		subtitleSt := postingSubtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		score := "unscored"
		if p.MatchScore != nil {
			score = fmt.Sprintf("%d%%", *p.MatchScore)
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(fmt.Sprintf("%s · %s", p.Title, p.Company)))
		b.WriteByte('\n')
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · match %s", p.Source, orDash(p.Location), score)))
		b.WriteByte('\n')

		if i < len(postings)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// sortByMatchScore orders postings best match first; unscored postings sink
// to the bottom.
func sortByMatchScore(postings []model.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		si, sj := postings[i].MatchScore, postings[j].MatchScore
		if si == nil {
			return false
		}
		if sj == nil {
			return true
		}
		return *si > *sj
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunReviewTUI launches the interactive review screen over the given
// postings. Decisions are applied through tracker as they are made.
func RunReviewTUI(postings []model.Posting, tracker Tracker) error {
	sortByMatchScore(postings)

	m := reviewModel{
		postings: postings,
		tracker:  tracker,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Package tui is a terminal course browser driven by a listing controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/listing"
	"github.com/robbertpopa/itec-web-2025/internal/models"
)

const (
	skeletonRows   = 4
	maxDescription = 72
)

// Lister is the part of *listing.Controller the browser drives.
type Lister interface {
	LoadPage(ctx context.Context, after string) (listing.Page, error)
	Recent(ctx context.Context, k int) ([]models.CoursePreview, error)
	Retry(ctx context.Context) (listing.Page, error)
	ApplyFilter(term string)
	Next(ctx context.Context) error
	Prev() error
	View() listing.View
}

type pageLoadedMsg struct {
	err error
}

type recentLoadedMsg struct {
	courses []models.CoursePreview
	err     error
}

type copyResultMsg struct {
	id  string
	err error
}

type Model struct {
	ctx         context.Context
	courses     Lister
	recentCount int
	copy        func(string) error

	view      listing.View
	recent    []models.CoursePreview
	cursor    int
	loading   bool
	searching bool
	input     string
	banner    string
	flash     string
	width     int
}

func New(ctx context.Context, courses Lister, recentCount int) Model {
	return Model{
		ctx:         ctx,
		courses:     courses,
		recentCount: recentCount,
		copy:        clipboard.WriteAll,
		view:        courses.View(),
		loading:     true,
		width:       80,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.load(func(ctx context.Context) error {
		_, err := m.courses.LoadPage(ctx, "")
		return err
	})}
	if m.recentCount > 0 {
		cmds = append(cmds, m.loadRecent())
	}
	return tea.Batch(cmds...)
}

func (m Model) load(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return pageLoadedMsg{err: fn(ctx)}
	}
}

func (m Model) loadRecent() tea.Cmd {
	ctx, courses, k := m.ctx, m.courses, m.recentCount
	return func() tea.Msg {
		recent, err := courses.Recent(ctx, k)
		return recentLoadedMsg{courses: recent, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		m.refresh()
		switch {
		case msg.err == nil:
			m.banner = ""
		case errors.Is(msg.err, app_errors.ErrPageOutOfRange), errors.Is(msg.err, app_errors.ErrControllerClosed):
		default:
			m.banner = msg.err.Error()
		}
		return m, nil

	case recentLoadedMsg:
		if msg.err == nil {
			m.recent = msg.courses
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.flash = "copy failed: " + msg.err.Error()
		} else {
			m.flash = "copied " + msg.id
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	m.flash = ""

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.input = m.view.Term
	case "esc":
		if m.banner != "" {
			m.banner = ""
		} else if m.view.Term != "" {
			m.applyFilter("")
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view.Items)-1 {
			m.cursor++
		}
	case "right", "l":
		if m.view.Page < m.view.TotalPages {
			if m.courses.Next(m.ctx) == nil {
				m.cursor = 0
				m.refresh()
			}
			return m, nil
		}
		if m.loading || !m.view.HasMore || m.view.Term != "" {
			return m, nil
		}
		m.loading = true
		m.cursor = 0
		return m, m.load(m.courses.Next)
	case "left", "h":
		if m.courses.Prev() == nil {
			m.cursor = 0
			m.refresh()
		}
	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.banner = ""
		return m, m.load(func(ctx context.Context) error {
			_, err := m.courses.Retry(ctx)
			return err
		})
	case "c":
		if m.cursor < len(m.view.Items) {
			id := m.view.Items[m.cursor].ID
			write := m.copy
			return m, func() tea.Msg {
				return copyResultMsg{id: id, err: write(id)}
			}
		}
	}
	return m, nil
}

// handleSearchKey edits the filter term. The filter is local so it is applied
// on every keystroke.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyEsc:
		m.searching = false
		m.input = ""
		m.applyFilter("")
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
			m.applyFilter(m.input)
		}
	case tea.KeySpace:
		m.input += " "
		m.applyFilter(m.input)
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		m.applyFilter(m.input)
	}
	return m, nil
}

func (m *Model) applyFilter(term string) {
	m.courses.ApplyFilter(strings.TrimSpace(term))
	m.cursor = 0
	m.refresh()
}

func (m *Model) refresh() {
	m.view = m.courses.View()
	if m.cursor >= len(m.view.Items) {
		m.cursor = max(len(m.view.Items)-1, 0)
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Courses"))
	b.WriteString("\n")
	if len(m.recent) > 0 {
		names := make([]string, len(m.recent))
		for i, c := range m.recent {
			names[i] = c.Name
		}
		b.WriteString(dimStyle.Render("Recently added: " + strings.Join(names, " · ")))
		b.WriteString("\n")
	}

	switch {
	case m.searching:
		b.WriteString(searchStyle.Render("/ " + m.input + "█"))
		b.WriteString("\n")
	case m.view.Term != "":
		b.WriteString(searchStyle.Render("filter: "+m.view.Term) + dimStyle.Render("  (esc to clear)"))
		b.WriteString("\n")
	}

	if m.banner != "" {
		b.WriteString(errorStyle.Render("! "+m.banner) + dimStyle.Render("  r retry · esc dismiss"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading && len(m.view.Items) == 0:
		for range skeletonRows {
			b.WriteString(dimStyle.Render("  ░░░░░░░░░░░░░░░░░░░░  ░░░░░░░░░░"))
			b.WriteString("\n")
			b.WriteString(dimStyle.Render("    ░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░"))
			b.WriteString("\n")
		}
	case len(m.view.Items) == 0:
		if m.banner == "" {
			b.WriteString(dimStyle.Render("  " + m.view.EmptyMessage))
			b.WriteString("\n")
		}
	default:
		for i, c := range m.view.Items {
			b.WriteString(m.renderRow(c, i == m.cursor))
		}
	}

	b.WriteString("\n")
	status := fmt.Sprintf("page %d/%d · %d loaded", m.view.Page, m.view.TotalPages, m.view.Loaded)
	if m.view.HasMore {
		status += " · more available"
	}
	if m.loading {
		status += " · loading..."
	}
	b.WriteString(metaStyle.Render(status))
	b.WriteString("\n")
	if m.flash != "" {
		b.WriteString(flashStyle.Render(m.flash))
		b.WriteString("\n")
	}
	b.WriteString(helpLine("←/→", "page", "j/k", "move", "/", "search", "c", "copy id", "r", "retry", "q", "quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderRow(c models.CoursePreview, selected bool) string {
	marker, name := "  ", normalStyle.Render(c.Name)
	if selected {
		marker, name = "> ", selectedStyle.Render(c.Name)
	}
	meta := "by " + c.AuthorName
	if c.ImageURL != "" {
		meta += " · cover"
	}
	line := marker + name + "  " + metaStyle.Render(meta) + "\n"
	if c.Description != "" {
		line += "    " + dimStyle.Render(truncate(c.Description, maxDescription)) + "\n"
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}

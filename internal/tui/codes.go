package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/finadmin/internal/query"
	"github.com/naveenspark/finadmin/pkg/domain"
)

type copyResultMsg struct {
	code string
	err  error
}

type generatedMsg struct {
	result *domain.GenerateCodesResult
	err    error
}

type codesModel struct {
	svc       *Services
	spin      spinner.Model
	list      binding
	page      int
	status    int // index into domain.CodeStatuses
	search    string
	searching bool
	cursor    int

	// generate form
	generating bool
	submitting bool
	countInput textinput.Model
	generated  []string
	correction string

	statusMsg string
	width     int
	height    int
}

func newCodesModel(svc *Services) codesModel {
	in := textinput.New()
	in.Prompt = inputPromptStyle.Render("how many? ")
	in.CharLimit = 3
	return codesModel{svc: svc, spin: newSpinner(), page: 1, countInput: in}
}

func (m codesModel) statusFilter() domain.CodeStatus {
	return domain.CodeStatuses[m.status%len(domain.CodeStatuses)]
}

func (m *codesModel) Init() tea.Cmd {
	return tea.Batch(m.rebind(), m.spin.Tick)
}

func (m *codesModel) rebind() tea.Cmd {
	m.list.close()
	var cmd tea.Cmd
	status := m.statusFilter()
	m.list, cmd = bind(m.svc.Cache, codesKey(m.page, status), m.svc.fetchCodes(m.page, status), 0)
	m.cursor = 0
	return cmd
}

func (m codesModel) close() { m.list.close() }

func (m codesModel) editing() bool { return m.searching || m.generating }

func (m codesModel) current() (*domain.Page[domain.BetaCode], bool) {
	p, ok := dataOf[*domain.Page[domain.BetaCode]](m.list)
	return p, ok && p != nil
}

func (m codesModel) visible() []domain.BetaCode {
	p, ok := m.current()
	if !ok {
		return nil
	}
	return domain.FilterCodes(p.Data, m.search)
}

// generate runs the mutation. Every beta-code listing is invalidated on
// success so the new codes show up on the next render.
func (m codesModel) generate(count int) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		res, err := query.Mutate(context.Background(), svc.Cache,
			func(ctx context.Context) (*domain.GenerateCodesResult, error) {
				return svc.Client.GenerateBetaCodes(ctx, count)
			}, codesPrefix())
		return generatedMsg{result: res, err: err}
	}
}

func (m codesModel) Update(msg tea.Msg) (codesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case queryMsg:
		if cmd, ok := m.list.apply(msg); ok {
			if n := len(m.visible()); m.cursor >= n {
				m.cursor = max(n-1, 0)
			}
			return m, cmd
		}
		return m, nil

	case generatedMsg:
		m.submitting = false
		if msg.err != nil {
			m.svc.Log.Warn().Err(msg.err).Msg("generate beta codes")
			m.statusMsg = errorStyle.Render("generate failed: " + msg.err.Error())
			return m, nil
		}
		m.svc.Log.Info().Int("count", msg.result.Count).Msg("generated beta codes")
		m.generated = msg.result.Codes
		m.statusMsg = goodStyle.Render(fmt.Sprintf("generated %d codes", msg.result.Count))
		if m.correction != "" {
			m.statusMsg += "  " + warnStyle.Render("("+m.correction+")")
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.svc.Log.Warn().Err(msg.err).Msg("copy code to clipboard")
			m.statusMsg = errorStyle.Render(fmt.Sprintf("copy failed: %v", msg.err))
		} else {
			m.statusMsg = goodStyle.Render("copied " + msg.code)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.generating:
			return m.updateGenerate(msg)
		case m.searching:
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	if m.generating {
		var cmd tea.Cmd
		m.countInput, cmd = m.countInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m codesModel) updateGenerate(msg tea.KeyMsg) (codesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.generating = false
		m.countInput.Blur()
		return m, nil
	case "enter":
		count, err := domain.ParseGenerateCount(m.countInput.Value())
		m.generating = false
		m.submitting = true
		m.countInput.Blur()
		m.statusMsg = dimStyle.Render(fmt.Sprintf("generating %d codes...", count))
		m.correction = ""
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			m.correction = verr.Error()
			m.statusMsg = warnStyle.Render(verr.Error())
		}
		return m, m.generate(count)
	}
	var cmd tea.Cmd
	m.countInput, cmd = m.countInput.Update(msg)
	return m, cmd
}

func (m codesModel) updateSearch(msg tea.KeyMsg) (codesModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
	case "esc":
		m.searching = false
		m.search = ""
	default:
		m.search = editRune(m.search, keyText(msg))
	}
	m.cursor = 0
	return m, nil
}

func (m codesModel) updateList(msg tea.KeyMsg) (codesModel, tea.Cmd) {
	codes := m.visible()
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(codes)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "f":
		m.status = (m.status + 1) % len(domain.CodeStatuses)
		m.page = 1
		return m, m.rebind()
	case "n", "right":
		if p, ok := m.current(); ok && p.Pagination.HasNext() {
			m.page++
			return m, m.rebind()
		}
	case "p", "left":
		if m.page > 1 {
			m.page--
			return m, m.rebind()
		}
	case "g":
		if m.submitting {
			return m, nil
		}
		m.generating = true
		m.statusMsg = ""
		m.countInput.SetValue(strconv.Itoa(domain.DefaultGenerateCount))
		m.countInput.CursorEnd()
		return m, m.countInput.Focus()
	case "c":
		if m.cursor < len(codes) {
			code := codes[m.cursor].Code
			return m, func() tea.Msg {
				return copyResultMsg{code: code, err: clipboard.WriteAll(code)}
			}
		}
	case "x":
		m.generated = nil
	case "r":
		return m, m.list.refresh()
	}
	return m, nil
}

func (m codesModel) View() string {
	var sb strings.Builder
	sb.WriteString(staleNotice(m.list))

	filter := dimStyle.Render("filter ") + accentStyle.Render(m.statusFilter().Label())
	search := ""
	switch {
	case m.searching:
		search = "  " + searchStyle.Render("/") + normalStyle.Render(m.search) + accentStyle.Render("█")
	case m.search != "":
		search = "  " + searchStyle.Render("/") + dimStyle.Render(m.search)
	}

	if m.generating {
		sb.WriteString(" " + m.countInput.View() + "  " + metaStyle.Render(fmt.Sprintf("%d-%d", domain.MinGenerateCount, domain.MaxGenerateCount)) + "\n")
	} else if m.submitting {
		sb.WriteString(" " + m.spin.View() + " ")
	}
	if m.statusMsg != "" {
		sb.WriteString(" " + m.statusMsg + "\n")
	}

	if len(m.generated) > 0 {
		sb.WriteString(" " + sectionHeader("new codes") + "\n")
		for _, c := range m.generated {
			sb.WriteString("   " + goldStyle.Render(c) + "\n")
		}
		sb.WriteString(" " + helpEntry("x", "dismiss") + "\n\n")
	}

	body, ok := fallback(m.list, m.spin, "beta codes")
	if !ok {
		return sb.String() + " " + filter + search + "\n" + body
	}
	p, _ := m.current()
	codes := m.visible()
	used, available := domain.CountUsed(p.Data)

	fmt.Fprintf(&sb, " %s  %s  %s%s\n",
		filter,
		metaStyle.Render(fmt.Sprintf("page %d/%d", p.Pagination.Page, p.Pagination.Pages)),
		metaStyle.Render(fmt.Sprintf("%s codes · %d used · %d available on this page", formatCount(p.Pagination.Total), used, available)),
		search)

	if len(codes) == 0 {
		if m.search != "" {
			return sb.String() + "\n " + dimStyle.Render("no codes match "+strconv.Quote(m.search))
		}
		return sb.String() + "\n " + dimStyle.Render("no codes, press g to generate")
	}

	sb.WriteString("\n " + metaStyle.Render(fmt.Sprintf("  %-14s %-10s %-12s %-20s %s", "code", "status", "created", "used by", "used")) + "\n")
	for i, c := range codes {
		status := goodStyle.Render(padRight("available", 10))
		usedBy := "-"
		if c.Used() {
			status = dimStyle.Render(padRight("used", 10))
			switch {
			case c.UserName != "":
				usedBy = c.UserName
			case c.UserUsername != "":
				usedBy = "@" + c.UserUsername
			}
		}
		line := fmt.Sprintf("%s %s %s %s %s",
			padRight(c.Code, 14),
			status,
			padRight(formatDate(c.CreatedAt), 12),
			padRight(usedBy, 20),
			formatDate(c.UsedAt))
		if i == m.cursor {
			sb.WriteString(" " + accentStyle.Render("> ") + selectedStyle.Render(line) + "\n")
		} else {
			sb.WriteString("   " + normalStyle.Render(line) + "\n")
		}
	}
	return sb.String()
}

func (m codesModel) helpKeys() string {
	switch {
	case m.generating:
		return helpBar("enter", "generate", "esc", "cancel")
	case m.searching:
		return helpBar("enter", "done", "esc", "clear")
	}
	return helpBar("1-6", "tabs", "j/k", "nav", "g", "generate", "c", "copy", "/", "search", "f", "filter", "n/p", "page", "r", "refresh", "h", "help")
}

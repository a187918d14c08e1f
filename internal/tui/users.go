package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/finadmin/pkg/domain"
)

// showPeekMsg opens the user detail overlay.
type showPeekMsg struct {
	userID string
}

type usersModel struct {
	svc       *Services
	spin      spinner.Model
	list      binding
	page      int
	status    int // index into domain.UserStatuses
	search    string
	searching bool
	cursor    int
	width     int
	height    int
}

func newUsersModel(svc *Services) usersModel {
	return usersModel{svc: svc, spin: newSpinner(), page: 1}
}

func (m usersModel) statusFilter() domain.UserStatus {
	return domain.UserStatuses[m.status%len(domain.UserStatuses)]
}

func (m *usersModel) Init() tea.Cmd {
	return tea.Batch(m.rebind(), m.spin.Tick)
}

// rebind subscribes to the current page and filter.
func (m *usersModel) rebind() tea.Cmd {
	m.list.close()
	var cmd tea.Cmd
	status := m.statusFilter()
	m.list, cmd = bind(m.svc.Cache, usersKey(m.page, status), m.svc.fetchUsers(m.page, status), 0)
	m.cursor = 0
	return cmd
}

func (m usersModel) close() { m.list.close() }

func (m usersModel) current() (*domain.Page[domain.User], bool) {
	p, ok := dataOf[*domain.Page[domain.User]](m.list)
	return p, ok && p != nil
}

// visible is the current page narrowed by the search query.
func (m usersModel) visible() []domain.User {
	p, ok := m.current()
	if !ok {
		return nil
	}
	return domain.FilterUsers(p.Data, m.search)
}

func (m usersModel) Update(msg tea.Msg) (usersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case queryMsg:
		if cmd, ok := m.list.apply(msg); ok {
			if n := len(m.visible()); m.cursor >= n {
				m.cursor = max(n-1, 0)
			}
			return m, cmd
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
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m usersModel) updateSearch(msg tea.KeyMsg) (usersModel, tea.Cmd) {
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

func (m usersModel) updateList(msg tea.KeyMsg) (usersModel, tea.Cmd) {
	users := m.visible()
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(users)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "f":
		m.status = (m.status + 1) % len(domain.UserStatuses)
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
	case "r":
		return m, m.list.refresh()
	case "enter":
		if m.cursor < len(users) {
			id := users[m.cursor].ID.String()
			return m, func() tea.Msg { return showPeekMsg{userID: id} }
		}
	}
	return m, nil
}

func (m usersModel) View() string {
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

	body, ok := fallback(m.list, m.spin, "users")
	if !ok {
		return " " + filter + search + "\n" + body
	}
	p, _ := m.current()
	users := m.visible()

	fmt.Fprintf(&sb, " %s  %s  %s%s\n",
		filter,
		metaStyle.Render(fmt.Sprintf("page %d/%d", p.Pagination.Page, p.Pagination.Pages)),
		metaStyle.Render(fmt.Sprintf("%s users · %d with plan on this page", formatCount(p.Pagination.Total), domain.CountWithPlan(p.Data))),
		search)

	if len(users) == 0 {
		if m.search != "" {
			return sb.String() + "\n " + dimStyle.Render("no users match "+strconv.Quote(m.search))
		}
		return sb.String() + "\n " + dimStyle.Render("no users")
	}

	sb.WriteString("\n " + metaStyle.Render(fmt.Sprintf("  %-22s %-16s %-10s %7s  %-14s %s", "name", "username", "plan", "entries", "joined", "last seen")) + "\n")
	for i, u := range users {
		username := "-"
		if u.TelegramUsername != "" {
			username = "@" + u.TelegramUsername
		}
		plan := u.Plan
		if !u.HasPlan() {
			plan = "none"
		}
		line := fmt.Sprintf("%s %s %s %7s  %s %s",
			padRight(u.DisplayName(), 22),
			padRight(username, 16),
			PlanStyle(u.PlanSlug).Render(padRight(plan, 10)),
			formatCount(u.EntriesCount),
			padRight(formatDate(u.CreatedAt), 14),
			formatAgo(u.LastInteraction))
		if i == m.cursor {
			sb.WriteString(" " + accentStyle.Render("> ") + selectedStyle.Render(line) + "\n")
		} else {
			sb.WriteString("   " + normalStyle.Render(line) + "\n")
		}
	}
	return sb.String()
}

func (m usersModel) helpKeys() string {
	if m.searching {
		return helpBar("enter", "done", "esc", "clear")
	}
	return helpBar("1-6", "tabs", "j/k", "nav", "enter", "detail", "/", "search", "f", "filter", "n/p", "page", "r", "refresh", "h", "help")
}

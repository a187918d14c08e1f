package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/finadmin/internal/browser"
	"github.com/naveenspark/finadmin/internal/session"
)

type view int

const (
	viewLoading view = iota
	viewLogin
	viewDashboard
	viewUsers
	viewEntries
	viewAI
	viewSystem
	viewCodes
)

// chrome is header(2) + tabs(1) + notice(1) + help(1).
const chrome = 5

// openURL is swapped out in tests.
var openURL = browser.Open

type logoutMsg struct{ err error }

type openedMsg struct {
	url string
	err error
}

// App is the root Bubbletea model. The session gate decides what is on
// screen: a loading banner, the login form, or the tabbed dashboard.
type App struct {
	svc        *Services
	sessionCh  <-chan session.State
	stopWatch  func()
	session    session.State
	loggingOut bool

	view       view
	login      loginModel
	dashboard  dashboardModel
	users      usersModel
	entries    entriesModel
	ai         aiModel
	system     systemModel
	codes      codesModel
	peek       peekModel
	peekOpen   bool
	helpOpen   bool
	helpCursor int
	spin       spinner.Model

	notice string
	width  int
	height int
	frame  int // logo shimmer animation frame
}

// NewApp creates the TUI application. It starts watching the session gate
// immediately so no transition is missed.
func NewApp(svc *Services) App {
	ch, stop := watchSession(svc.Gate)
	return App{
		svc:       svc,
		sessionCh: ch,
		stopWatch: stop,
		session:   session.StateLoading,
		view:      viewLoading,
		login:     newLoginModel(svc, ""),
		dashboard: newDashboardModel(svc),
		users:     newUsersModel(svc),
		entries:   newEntriesModel(svc),
		ai:        newAIModel(svc),
		system:    newSystemModel(svc),
		codes:     newCodesModel(svc),
		spin:      newSpinner(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.spin.Tick, a.startSession(), waitSession(a.sessionCh))
}

// startSession verifies the stored token once.
func (a App) startSession() tea.Cmd {
	svc := a.svc
	return func() tea.Msg {
		return sessionMsg{state: svc.Gate.Start(context.Background(), svc.Client)}
	}
}

// Shutdown releases the session watch and the active view's subscriptions.
func (a App) Shutdown() {
	a.closeActive()
	if a.stopWatch != nil {
		a.stopWatch()
	}
}

func (a App) bodyMsg() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - chrome}
}

func (a *App) applySession(st session.State) tea.Cmd {
	if st == a.session {
		return nil
	}
	prev := a.session
	a.session = st
	a.closeActive()
	a.peekOpen = false
	a.helpOpen = false

	switch st {
	case session.StateAuthenticated:
		a.notice = ""
		a.view = viewDashboard
		return a.initActive()

	case session.StateUnauthenticated:
		a.svc.Cache.Reset()
		notice := ""
		if prev == session.StateAuthenticated && !a.loggingOut {
			a.svc.Log.Info().Msg("session expired")
			notice = "Your session expired. Sign in again."
		}
		a.loggingOut = false
		a.login = newLoginModel(a.svc, notice)
		a.login, _ = a.login.Update(a.bodyMsg())
		a.view = viewLogin
		return a.login.Init()
	}
	return nil
}

func (a App) closeActive() {
	switch a.view {
	case viewDashboard:
		a.dashboard.close()
	case viewUsers:
		a.users.close()
	case viewEntries:
		a.entries.close()
	case viewAI:
		a.ai.close()
	case viewSystem:
		a.system.close()
	case viewCodes:
		a.codes.close()
	}
}

func (a *App) initActive() tea.Cmd {
	body := a.bodyMsg()
	switch a.view {
	case viewDashboard:
		a.dashboard, _ = a.dashboard.Update(body)
		return a.dashboard.Init()
	case viewUsers:
		a.users, _ = a.users.Update(body)
		return a.users.Init()
	case viewEntries:
		a.entries, _ = a.entries.Update(body)
		return a.entries.Init()
	case viewAI:
		a.ai, _ = a.ai.Update(body)
		return a.ai.Init()
	case viewSystem:
		a.system, _ = a.system.Update(body)
		return a.system.Init()
	case viewCodes:
		a.codes, _ = a.codes.Update(body)
		return a.codes.Init()
	}
	return nil
}

func (a *App) switchTo(v view) tea.Cmd {
	if a.view == v {
		return nil
	}
	a.closeActive()
	a.view = v
	a.notice = ""
	return a.initActive()
}

func (a App) authenticated() bool {
	return a.view >= viewDashboard
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLogin:
		return true
	case viewUsers:
		return a.users.searching
	case viewCodes:
		return a.codes.editing()
	}
	return false
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		bodyMsg := a.bodyMsg()
		a.login, _ = a.login.Update(bodyMsg)
		a.dashboard, _ = a.dashboard.Update(bodyMsg)
		a.users, _ = a.users.Update(bodyMsg)
		a.entries, _ = a.entries.Update(bodyMsg)
		a.ai, _ = a.ai.Update(bodyMsg)
		a.system, _ = a.system.Update(bodyMsg)
		a.codes, _ = a.codes.Update(bodyMsg)
		a.peek, _ = a.peek.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionMsg:
		// The gate is the source of truth; the message only says it moved.
		cmd := a.applySession(a.svc.Gate.State())
		if msg.watched {
			return a, tea.Batch(cmd, waitSession(a.sessionCh))
		}
		return a, cmd

	case spinner.TickMsg:
		// Each spinner ignores ticks that are not its own.
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		cmds = append(cmds, cmd)
		a.login, cmd = a.login.Update(msg)
		cmds = append(cmds, cmd)
		a.dashboard, cmd = a.dashboard.Update(msg)
		cmds = append(cmds, cmd)
		a.users, cmd = a.users.Update(msg)
		cmds = append(cmds, cmd)
		a.entries, cmd = a.entries.Update(msg)
		cmds = append(cmds, cmd)
		a.ai, cmd = a.ai.Update(msg)
		cmds = append(cmds, cmd)
		a.system, cmd = a.system.Update(msg)
		cmds = append(cmds, cmd)
		a.codes, cmd = a.codes.Update(msg)
		cmds = append(cmds, cmd)
		a.peek, cmd = a.peek.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case queryMsg:
		// Only the binding that owns msg.sub reacts.
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.Update(msg)
		cmds = append(cmds, cmd)
		a.users, cmd = a.users.Update(msg)
		cmds = append(cmds, cmd)
		a.entries, cmd = a.entries.Update(msg)
		cmds = append(cmds, cmd)
		a.ai, cmd = a.ai.Update(msg)
		cmds = append(cmds, cmd)
		a.system, cmd = a.system.Update(msg)
		cmds = append(cmds, cmd)
		a.codes, cmd = a.codes.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case generatedMsg, copyResultMsg:
		var cmd tea.Cmd
		a.codes, cmd = a.codes.Update(msg)
		return a, cmd

	case loginResultMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd

	case logoutMsg:
		if msg.err != nil {
			a.svc.Log.Warn().Err(msg.err).Msg("logout")
			a.notice = errorStyle.Render("logout: " + msg.err.Error())
		}
		return a, nil

	case openedMsg:
		if msg.err != nil {
			a.notice = errorStyle.Render(fmt.Sprintf("could not open %s: %v", msg.url, msg.err))
		} else {
			a.notice = dimStyle.Render("opened " + msg.url)
		}
		return a, nil

	case showPeekMsg:
		a.peekOpen = true
		a.peek = newPeekModel(a.svc, msg.userID)
		a.peek, _ = a.peek.Update(a.bodyMsg())
		return a, a.peek.load()

	case peekLoadedMsg:
		var cmd tea.Cmd
		a.peek, cmd = a.peek.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Help overlay captures all keys when open
		if a.helpOpen {
			items := helpItems(a.svc.WebURL)
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(items)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				if a.helpCursor < len(items) {
					return a, openCmd(items[a.helpCursor].url)
				}
			}
			return a, nil
		}

		// Peek overlay captures all keys when open
		if a.peekOpen {
			var cmd tea.Cmd
			a.peek, cmd = a.peek.Update(msg)
			if a.peek.closed {
				a.peekOpen = false
			}
			return a, cmd
		}

		if a.view == viewLoading {
			if msg.String() == "q" {
				return a, tea.Quit
			}
			return a, nil
		}

		// Global keys (only when not editing)
		if !a.isEditing() {
			switch msg.String() {
			case "h":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				return a, tea.Quit
			case "1":
				return a, a.switchTo(viewDashboard)
			case "2":
				return a, a.switchTo(viewUsers)
			case "3":
				return a, a.switchTo(viewEntries)
			case "4":
				return a, a.switchTo(viewAI)
			case "5":
				return a, a.switchTo(viewSystem)
			case "6":
				return a, a.switchTo(viewCodes)
			case "o":
				if a.svc.WebURL != "" {
					return a, openCmd(a.svc.WebURL)
				}
				return a, nil
			case "L":
				a.loggingOut = true
				gate := a.svc.Gate
				return a, func() tea.Msg {
					return logoutMsg{err: gate.Logout(context.Background())}
				}
			}
		}
	}

	if a.peekOpen {
		var cmd tea.Cmd
		a.peek, cmd = a.peek.Update(msg)
		if a.peek.closed {
			a.peekOpen = false
		}
		return a, cmd
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewUsers:
		a.users, cmd = a.users.Update(msg)
	case viewEntries:
		a.entries, cmd = a.entries.Update(msg)
	case viewAI:
		a.ai, cmd = a.ai.Update(msg)
	case viewSystem:
		a.system, cmd = a.system.Update(msg)
	case viewCodes:
		a.codes, cmd = a.codes.Update(msg)
	}
	return a, cmd
}

func openCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{url: url, err: openURL(url)}
	}
}

func (a App) activeBindings() []binding {
	switch a.view {
	case viewDashboard:
		return []binding{a.dashboard.overview, a.dashboard.users, a.dashboard.commands, a.dashboard.entries}
	case viewUsers:
		return []binding{a.users.list}
	case viewEntries:
		return []binding{a.entries.entries}
	case viewAI:
		return []binding{a.ai.ai}
	case viewSystem:
		return []binding{a.system.system}
	case viewCodes:
		return []binding{a.codes.list}
	}
	return nil
}

func centered(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) View() string {
	header := centered(renderShimmerLogo(a.frame), a.width)

	status := metaStyle.Render(a.svc.Client.BaseURL())
	switch {
	case a.authenticated() && anyFetching(a.activeBindings()...):
		status += metaStyle.Render(" · ") + a.spin.View() + dimStyle.Render(" syncing")
	case a.authenticated():
		status += metaStyle.Render(" · ") + goodStyle.Render("signed in")
	}
	header += "\n" + centered(status, a.width)

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Dashboard", viewDashboard},
		{"2", "Users", viewUsers},
		{"3", "Entries", viewEntries},
		{"4", "AI", viewAI},
		{"5", "System", viewSystem},
		{"6", "Codes", viewCodes},
	}

	var tabBar strings.Builder
	if a.authenticated() {
		colWidth := a.width / len(tabs)
		for _, t := range tabs {
			var label string
			if t.v == a.view {
				label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
			} else {
				label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
			}
			labelWidth := lipgloss.Width(label)
			leftPad := max((colWidth-labelWidth)/2, 0)
			rightPad := max(colWidth-labelWidth-leftPad, 0)
			tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
		}
	}

	var body, help string
	switch a.view {
	case viewLoading:
		body = "\n " + a.spin.View() + " " + dimStyle.Render("checking session...")
		help = helpBar("q", "quit")
	case viewLogin:
		body = a.login.View()
		help = helpBar("enter", "sign in", "ctrl+c", "quit")
	case viewDashboard:
		body = a.dashboard.View()
		help = a.dashboard.helpKeys()
	case viewUsers:
		body = a.users.View()
		help = a.users.helpKeys()
	case viewEntries:
		body = a.entries.View()
		help = a.entries.helpKeys()
	case viewAI:
		body = a.ai.View()
		help = a.ai.helpKeys()
	case viewSystem:
		body = a.system.View()
		help = a.system.helpKeys()
	case viewCodes:
		body = a.codes.View()
		help = a.codes.helpKeys()
	}

	if a.peekOpen {
		body = a.peek.View()
		help = helpBar("esc", "close")
	}

	if a.helpOpen {
		body = helpView(helpItems(a.svc.WebURL), a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "open", "esc", "close")
	}

	noticeBar := ""
	if a.notice != "" {
		noticeBar = " " + a.notice
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, noticeBar, help)
}

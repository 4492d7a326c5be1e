package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/hekate/internal/api"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/notify"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/tui/components/blocks"
	"github.com/julianstephens/hekate/internal/tui/components/dreamlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case FlashMsg:
		m.setNotice(msg.Level, msg.Text)
		return m, m.flash.Wait()

	case PatchedMsg:
		if tab, ok := msg.tab(); ok {
			return m, tea.Batch(m.reload(tab), m.flash.Wait())
		}
		return m, m.flash.Wait()

	case todayMsg:
		if msg.err != nil {
			return m.loadFailed(msg.err, constants.MsgRoutineFetchFailed)
		}
		m.blocks.SetDay(msg.day)
		return m, nil

	case dreamsMsg:
		if msg.err != nil {
			return m.loadFailed(msg.err, constants.MsgDreamsFetchFailed)
		}
		m.dreamList.SetDreams(msg.dreams)
		return m, nil

	case readMsg:
		if msg.err != nil {
			return m.loadFailed(msg.err, constants.MsgDailyReadFailed)
		}
		read := msg.read
		m.read = &read
		return m, nil

	case mutatedMsg:
		return m.mutated(msg)

	case loginMsg:
		if msg.err != nil {
			m.setNotice(notify.LevelError, herrors.UserMessage(msg.err, constants.MsgLoginFailed))
			m.showLogin(m.loginEmail())
			return m, m.form.Init()
		}
		m.leaveForm()
		m.setNotice(notify.LevelSuccess, "Sesión iniciada.")
		return m, m.loadAll(true)

	case resetMsg:
		return m.resetDone(msg)

	case blocks.AdvanceMsg:
		return m, m.advance(msg.ID)

	case blocks.MoveMsg:
		return m, m.move(msg.ID, msg.Delta)

	case dreamlist.VisualizeMsg:
		return m, m.visualize(msg.ID)

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateFormKey(msg)
		}
		return m.updateKey(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd
	m.dreamList, cmd = m.dreamList.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == DreamsView && m.dreamList.Filtering() {
		var cmd tea.Cmd
		m.dreamList, cmd = m.dreamList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.state = tabs[(m.tabIndex()+1)%len(tabs)]
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = tabs[(m.tabIndex()-1+len(tabs))%len(tabs)]
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadAll(true)
	case key.Matches(msg, m.keys.Logout):
		if err := m.svc.Auth.Logout(); err != nil {
			logger.Warn("Logout failed", "error", err)
		}
		m.setNotice(notify.LevelInfo, constants.MsgLoggedOut)
		m.showLogin("")
		return m, m.form.Init()
	}

	var cmd tea.Cmd
	switch m.state {
	case TodayView:
		m.blocks, cmd = m.blocks.Update(msg)
	case DreamsView:
		m.dreamList, cmd = m.dreamList.Update(msg)
	}
	return m, cmd
}

func (m Model) tabIndex() int {
	for i, t := range tabs {
		if t == m.state {
			return i
		}
	}
	return 0
}

func (m Model) updateFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case msg.String() == "esc" && m.state == ResetView:
		m.showLogin(m.reset.Email)
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Reset) && m.state == LoginView:
		m.showReset(m.loginEmail())
		return m, m.form.Init()
	}
	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	case huh.StateCompleted:
		switch {
		case m.state == LoginView:
			return m, m.submitLogin(*m.login)
		case m.state == ResetView && m.resetStep == resetRequest:
			return m, m.requestCode(m.reset.Email)
		case m.state == ResetView:
			return m, m.submitReset(*m.reset)
		}
	}
	return m, cmd
}

func (m Model) resetDone(msg resetMsg) (tea.Model, tea.Cmd) {
	if m.reset == nil {
		return m, nil
	}
	if msg.err != nil {
		fallback := constants.MsgForgotPasswordFailed
		if msg.step == resetConfirm {
			fallback = constants.MsgResetPasswordFailed
		}
		m.setNotice(notify.LevelError, herrors.UserMessage(msg.err, fallback))
		if msg.step == resetRequest {
			m.showReset(m.reset.Email)
		} else {
			m.showResetConfirm()
		}
		return m, m.form.Init()
	}

	if msg.step == resetRequest {
		m.setNotice(notify.LevelInfo, fmt.Sprintf(constants.MsgResetCodeSent, m.reset.Email))
		m.showResetConfirm()
		return m, m.form.Init()
	}
	m.setNotice(notify.LevelSuccess, constants.MsgPasswordReset)
	m.showLogin(m.reset.Email)
	return m, m.form.Init()
}

// mutated handles the end of a mutation. Failures were already reported
// through the flash by the runner; the view is reloaded either way so a
// rollback shows up.
func (m Model) mutated(msg mutatedMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err == nil:
	case errors.Is(msg.err, optimistic.ErrInFlight):
		return m, nil
	case errors.Is(msg.err, optimistic.ErrNoop):
		text := constants.MsgBlockAlreadyDone
		if msg.tab == DreamsView {
			text = constants.MsgAlreadyVisualized
		}
		m.setNotice(notify.LevelInfo, text)
		return m, nil
	case errors.Is(msg.err, api.ErrUnauthorized):
		return m.sessionLost()
	}
	return m, m.reload(msg.tab)
}

func (m Model) loadFailed(err error, fallback string) (tea.Model, tea.Cmd) {
	if errors.Is(err, api.ErrUnauthorized) {
		return m.sessionLost()
	}
	m.setNotice(notify.LevelError, herrors.UserMessage(err, fallback))
	return m, nil
}

func (m Model) sessionLost() (tea.Model, tea.Cmd) {
	if m.state == LoginView {
		return m, nil
	}
	m.setNotice(notify.LevelError, constants.MsgSessionExpired)
	m.showLogin("")
	return m, m.form.Init()
}

func (m *Model) resize() {
	h, v := docStyle.GetFrameSize()
	// tabs, notice and help each take a line
	width, height := m.width-h, m.height-v-4
	m.blocks.SetSize(width, height)
	m.dreamList.SetSize(width, height)
}

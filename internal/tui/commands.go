package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/validation"
)

type todayMsg struct {
	day models.RoutineDay
	err error
}

type dreamsMsg struct {
	dreams []models.Dream
	err    error
}

type readMsg struct {
	read models.DailyRead
	err  error
}

// mutatedMsg reports a finished mutation; tab is the view to reload.
type mutatedMsg struct {
	tab SessionState
	err error
}

type loginMsg struct {
	err error
}

type resetMsg struct {
	step resetStep
	err  error
}

func (m Model) loadToday(refresh bool) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Routine
	return func() tea.Msg {
		day, err := svc.Today(ctx, refresh)
		return todayMsg{day: day, err: err}
	}
}

func (m Model) loadDreams(refresh bool) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Dreams
	return func() tea.Msg {
		list, err := svc.List(ctx, false, refresh)
		return dreamsMsg{dreams: list, err: err}
	}
}

func (m Model) loadRead(refresh bool) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Reads
	return func() tea.Msg {
		read, err := svc.Today(ctx, refresh)
		return readMsg{read: read, err: err}
	}
}

func (m Model) loadAll(refresh bool) tea.Cmd {
	return tea.Batch(m.loadToday(refresh), m.loadDreams(refresh), m.loadRead(refresh))
}

func (m Model) reload(tab SessionState) tea.Cmd {
	switch tab {
	case TodayView:
		return m.loadToday(false)
	case DreamsView:
		return m.loadDreams(false)
	case ReadView:
		return m.loadRead(false)
	}
	return nil
}

func (m Model) advance(blockID string) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Routine
	return func() tea.Msg {
		_, err := svc.Advance(ctx, blockID)
		return mutatedMsg{tab: TodayView, err: err}
	}
}

func (m Model) move(blockID string, delta int) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Routine
	return func() tea.Msg {
		_, err := svc.MoveBlock(ctx, blockID, delta)
		return mutatedMsg{tab: TodayView, err: err}
	}
}

func (m Model) visualize(dreamID string) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Dreams
	return func() tea.Msg {
		_, err := svc.Visualize(ctx, dreamID)
		return mutatedMsg{tab: DreamsView, err: err}
	}
}

func (m Model) submitLogin(form validation.LoginForm) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Auth
	return func() tea.Msg {
		_, err := svc.Login(ctx, form)
		return loginMsg{err: err}
	}
}

func (m Model) requestCode(email string) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Auth
	return func() tea.Msg {
		err := svc.ForgotPassword(ctx, validation.ForgotPasswordForm{Email: email})
		return resetMsg{step: resetRequest, err: err}
	}
}

func (m Model) submitReset(form validation.ResetPasswordForm) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Auth
	return func() tea.Msg {
		err := svc.ResetPassword(ctx, form)
		return resetMsg{step: resetConfirm, err: err}
	}
}

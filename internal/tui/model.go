// Package tui is the interactive client: today's routine, the dream list and
// the daily read, behind a login screen.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/hekate/internal/auth"
	"github.com/julianstephens/hekate/internal/dreams"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/notify"
	"github.com/julianstephens/hekate/internal/reads"
	"github.com/julianstephens/hekate/internal/routine"
	"github.com/julianstephens/hekate/internal/tui/components/blocks"
	"github.com/julianstephens/hekate/internal/tui/components/dreamlist"
	"github.com/julianstephens/hekate/internal/validation"
)

type SessionState int

const (
	TodayView SessionState = iota
	DreamsView
	ReadView
	LoginView
	ResetView
)

var tabs = []SessionState{TodayView, DreamsView, ReadView}

func (s SessionState) Title() string {
	switch s {
	case TodayView:
		return "Hoy"
	case DreamsView:
		return "Sueños"
	case ReadView:
		return "Lectura"
	case LoginView:
		return "Iniciar sesión"
	case ResetView:
		return "Recuperar contraseña"
	}
	return ""
}

// Services are the operations the TUI drives.
type Services struct {
	Auth    *auth.Service
	Dreams  *dreams.Service
	Routine *routine.Service
	Reads   *reads.Service
}

// resetStep tracks password recovery: first the email, then the code and
// the new password.
type resetStep int

const (
	resetRequest resetStep = iota
	resetConfirm
)

type Model struct {
	ctx   context.Context
	svc   Services
	flash *Flash
	now   func() time.Time

	state SessionState
	keys  KeyMap
	help  help.Model

	blocks    blocks.Model
	dreamList dreamlist.Model
	read      *models.DailyRead

	form      *huh.Form
	login     *validation.LoginForm
	reset     *validation.ResetPasswordForm
	resetStep resetStep

	notice      string
	noticeLevel notify.Level

	width    int
	height   int
	quitting bool
}

func NewModel(ctx context.Context, svc Services, flash *Flash) Model {
	if flash == nil {
		flash = NewFlash()
	}
	m := Model{
		ctx:       ctx,
		svc:       svc,
		flash:     flash,
		now:       time.Now,
		state:     TodayView,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		blocks:    blocks.New(0, 0),
		dreamList: dreamlist.New(nil, 0, 0),
	}
	if !m.loggedIn() {
		m.showLogin("")
	}
	return m
}

func (m Model) loggedIn() bool {
	st, err := m.svc.Auth.Status(m.now())
	return err == nil && st.LoggedIn && !st.Expired
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.flash.Wait()}
	if m.form != nil {
		cmds = append(cmds, m.form.Init())
	} else {
		cmds = append(cmds, m.loadAll(false))
	}
	return tea.Batch(cmds...)
}

func (m *Model) showLogin(email string) {
	m.state = LoginView
	m.login = &validation.LoginForm{Email: email}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Correo electrónico").
				Value(&m.login.Email).
				Validate(validation.Email),
			huh.NewInput().
				Title("Contraseña").
				EchoMode(huh.EchoModePassword).
				Value(&m.login.Password).
				Validate(validation.Required),
		),
	).WithShowHelp(false)
}

func (m Model) loginEmail() string {
	if m.login == nil {
		return ""
	}
	return m.login.Email
}

func (m *Model) showReset(email string) {
	m.state = ResetView
	m.resetStep = resetRequest
	m.reset = &validation.ResetPasswordForm{Email: email}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Correo electrónico").
				Description("Te enviaremos un código de 6 dígitos.").
				Value(&m.reset.Email).
				Validate(validation.Email),
		),
	).WithShowHelp(false)
}

func (m *Model) showResetConfirm() {
	m.resetStep = resetConfirm
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Código").
				CharLimit(6).
				Value(&m.reset.Code).
				Validate(validation.Code),
			huh.NewInput().
				Title("Nueva contraseña").
				EchoMode(huh.EchoModePassword).
				Value(&m.reset.NewPassword).
				Validate(validation.Password),
			huh.NewInput().
				Title("Confirmar contraseña").
				EchoMode(huh.EchoModePassword).
				Value(&m.reset.ConfirmPassword).
				Validate(validation.Matches(&m.reset.NewPassword)),
		),
	).WithShowHelp(false)
}

func (m *Model) leaveForm() {
	m.form = nil
	m.login = nil
	m.reset = nil
	m.state = TodayView
}

func (m *Model) setNotice(level notify.Level, text string) {
	m.noticeLevel = level
	m.notice = text
}

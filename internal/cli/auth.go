package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/hekate/internal/constants"
	"github.com/julianstephens/hekate/internal/validation"
)

type AuthCmd struct {
	Login          AuthLoginCmd          `cmd:"" help:"Log in with email and password or a Google id token."`
	Register       AuthRegisterCmd       `cmd:"" help:"Create an account."`
	Logout         AuthLogoutCmd         `cmd:"" help:"Forget the stored session and cached data."`
	Status         AuthStatusCmd         `cmd:"" help:"Show the stored session."`
	Profile        AuthProfileCmd        `cmd:"" help:"Show the current user."`
	Rename         AuthRenameCmd         `cmd:"" help:"Change the display name."`
	ForgotPassword AuthForgotPasswordCmd `cmd:"" name:"forgot-password" help:"Email a password reset code."`
	VerifyCode     AuthVerifyCodeCmd     `cmd:"" name:"verify-code" help:"Check a password reset code."`
	ResetPassword  AuthResetPasswordCmd  `cmd:"" name:"reset-password" help:"Set a new password with a reset code."`
}

type AuthLoginCmd struct {
	Email       string `help:"Account email."`
	Password    string `help:"Account password (prompted when omitted)."`
	GoogleToken string `name:"google-token" help:"Google id token to exchange instead of a password."`
}

func (c *AuthLoginCmd) Run(ctx *Context) error {
	if c.GoogleToken != "" {
		user, err := ctx.Auth.LoginWithGoogle(ctx.Ctx, c.GoogleToken)
		if err != nil {
			return err
		}
		ctx.printf("Sesión iniciada como %s\n", user.Email)
		return nil
	}

	if err := ask(
		emailInput(&c.Email),
		passwordInput("Contraseña", &c.Password, validation.Required),
	); err != nil {
		return err
	}
	user, err := ctx.Auth.Login(ctx.Ctx, validation.LoginForm{Email: c.Email, Password: c.Password})
	if err != nil {
		return err
	}
	ctx.printf("Sesión iniciada como %s\n", user.Email)
	return nil
}

type AuthRegisterCmd struct {
	Name     string `help:"Display name."`
	Email    string `help:"Account email."`
	Password string `help:"Password (prompted when omitted)."`
	Confirm  string `help:"Password confirmation (prompted when omitted)."`
}

func (c *AuthRegisterCmd) Run(ctx *Context) error {
	if err := ask(
		textInput("Nombre", &c.Name, validation.Name),
		emailInput(&c.Email),
		passwordInput("Contraseña", &c.Password, validation.Password),
		passwordInput("Confirmar contraseña", &c.Confirm, validation.Matches(&c.Password)),
	); err != nil {
		return err
	}
	user, err := ctx.Auth.Register(ctx.Ctx, validation.RegisterForm{
		Name:            c.Name,
		Email:           c.Email,
		Password:        c.Password,
		ConfirmPassword: c.Confirm,
	})
	if err != nil {
		return err
	}
	ctx.printf("Cuenta creada para %s\n", user.Email)
	return nil
}

type AuthLogoutCmd struct{}

func (c *AuthLogoutCmd) Run(ctx *Context) error {
	if err := ctx.Auth.Logout(); err != nil {
		return err
	}
	ctx.println(constants.MsgLoggedOut)
	return nil
}

type AuthStatusCmd struct{}

func (c *AuthStatusCmd) Run(ctx *Context) error {
	st, err := ctx.Auth.Status(time.Now())
	if err != nil {
		return fmt.Errorf("stored session is unreadable: %w", err)
	}
	if !st.LoggedIn {
		ctx.println(constants.MsgNotLoggedIn)
		return nil
	}
	switch {
	case st.ExpiresAt.IsZero():
		ctx.printf("Sesión activa (%s), sin fecha de expiración\n", st.Subject)
	case st.Expired:
		ctx.println(constants.MsgSessionExpired)
	default:
		ctx.printf("Sesión activa (%s), expira %s (en %s)\n",
			st.Subject, st.ExpiresAt.Local().Format(time.RFC3339), st.Remaining.Round(time.Minute))
	}
	return nil
}

type AuthProfileCmd struct {
	Refresh bool `help:"Bypass the cache."`
}

func (c *AuthProfileCmd) Run(ctx *Context) error {
	u, err := ctx.Auth.Profile(ctx.Ctx, c.Refresh)
	if err != nil {
		return err
	}
	ctx.printf("Nombre: %s\nCorreo: %s\nID:     %s\n", u.Name, u.Email, u.ID)
	return nil
}

type AuthRenameCmd struct {
	Name string `arg:"" help:"New display name."`
}

func (c *AuthRenameCmd) Run(ctx *Context) error {
	u, err := ctx.Auth.UpdateName(ctx.Ctx, validation.ProfileForm{Name: c.Name})
	if err != nil {
		return err
	}
	ctx.printf("Nombre actualizado: %s\n", u.Name)
	return nil
}

type AuthForgotPasswordCmd struct {
	Email string `help:"Account email."`
}

func (c *AuthForgotPasswordCmd) Run(ctx *Context) error {
	if err := ask(emailInput(&c.Email)); err != nil {
		return err
	}
	if err := ctx.Auth.ForgotPassword(ctx.Ctx, validation.ForgotPasswordForm{Email: c.Email}); err != nil {
		return err
	}
	ctx.printf(constants.MsgResetCodeSent+"\n", c.Email)
	return nil
}

type AuthVerifyCodeCmd struct {
	Email string `help:"Account email."`
	Code  string `help:"Six digit code from the email."`
}

func (c *AuthVerifyCodeCmd) Run(ctx *Context) error {
	if err := ask(
		emailInput(&c.Email),
		textInput("Código", &c.Code, validation.Code),
	); err != nil {
		return err
	}
	if err := ctx.Auth.VerifyResetCode(ctx.Ctx, validation.VerifyCodeForm{Email: c.Email, Code: c.Code}); err != nil {
		return err
	}
	ctx.println("Código válido")
	return nil
}

type AuthResetPasswordCmd struct {
	Email    string `help:"Account email."`
	Code     string `help:"Six digit code from the email."`
	Password string `help:"New password (prompted when omitted)."`
	Confirm  string `help:"New password confirmation (prompted when omitted)."`
}

func (c *AuthResetPasswordCmd) Run(ctx *Context) error {
	if err := ask(
		emailInput(&c.Email),
		textInput("Código", &c.Code, validation.Code),
		passwordInput("Nueva contraseña", &c.Password, validation.Password),
		passwordInput("Confirmar contraseña", &c.Confirm, validation.Matches(&c.Password)),
	); err != nil {
		return err
	}
	err := ctx.Auth.ResetPassword(ctx.Ctx, validation.ResetPasswordForm{
		Email:           c.Email,
		Code:            c.Code,
		NewPassword:     c.Password,
		ConfirmPassword: c.Confirm,
	})
	if err != nil {
		return err
	}
	ctx.println(constants.MsgPasswordReset)
	return nil
}

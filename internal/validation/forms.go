package validation

type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() error {
	errs := Errors{}
	errs.add(FieldEmail, Email(f.Email))
	errs.add(FieldPassword, Required(f.Password))
	return errs.err()
}

type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func (f RegisterForm) Validate() error {
	errs := Errors{}
	errs.add(FieldName, Name(f.Name))
	errs.add(FieldEmail, Email(f.Email))
	errs.add(FieldPassword, Password(f.Password))
	errs.add(FieldConfirmPassword, Matches(&f.Password)(f.ConfirmPassword))
	return errs.err()
}

type ForgotPasswordForm struct {
	Email string
}

func (f ForgotPasswordForm) Validate() error {
	errs := Errors{}
	errs.add(FieldEmail, Email(f.Email))
	return errs.err()
}

type VerifyCodeForm struct {
	Email string
	Code  string
}

func (f VerifyCodeForm) Validate() error {
	errs := Errors{}
	errs.add(FieldEmail, Email(f.Email))
	errs.add(FieldCode, Code(f.Code))
	return errs.err()
}

// ResetPasswordForm is the last step of password recovery. A mismatch is
// reported on confirmPassword, never on newPassword.
type ResetPasswordForm struct {
	Email           string
	Code            string
	NewPassword     string
	ConfirmPassword string
}

func (f ResetPasswordForm) Validate() error {
	errs := Errors{}
	errs.add(FieldEmail, Email(f.Email))
	errs.add(FieldCode, Code(f.Code))
	errs.add(FieldNewPassword, Password(f.NewPassword))
	errs.add(FieldConfirmPassword, Matches(&f.NewPassword)(f.ConfirmPassword))
	return errs.err()
}

type DreamForm struct {
	Title string
	Text  string
}

func (f DreamForm) Validate() error {
	errs := Errors{}
	errs.add(FieldTitle, Title(f.Title))
	errs.add(FieldText, Text(f.Text))
	return errs.err()
}

type BlockForm struct {
	Title       string
	Description string
	Color       string
}

func (f BlockForm) Validate() error {
	errs := Errors{}
	errs.add(FieldTitle, Title(f.Title))
	errs.add(FieldDescription, Text(f.Description))
	errs.add(FieldColor, Color(f.Color))
	return errs.err()
}

type ProfileForm struct {
	Name string
}

func (f ProfileForm) Validate() error {
	errs := Errors{}
	errs.add(FieldName, Name(f.Name))
	return errs.err()
}

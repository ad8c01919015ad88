package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aloks98/securevault"
	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/internal/wire"
	"github.com/aloks98/securevault/validation"
)

var errNotSignedIn = securevault.NewSessionError("NOT_SIGNED_IN", "You are not signed in. Run securevault login first", nil)

// withSession opens the session, runs fn and closes the session.
func (a *App) withSession(ctx context.Context, fn func(*securevault.Session) error) error {
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			a.log.Warnw("failed to close session", "error", cerr)
		}
	}()
	return fn(sess)
}

func (a *App) signedIn(sess *securevault.Session) (*identity.User, error) {
	user := sess.User()
	if user == nil {
		return nil, errNotSignedIn
	}
	return user, nil
}

func (a *App) loginCommand() *cobra.Command {
	var form wire.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fill(field("Email", &form.Email), secret("Password", &form.Password)); err != nil {
				return err
			}
			if err := validation.Struct(form); err != nil {
				return err
			}

			return a.withSession(cmd.Context(), func(sess *securevault.Session) error {
				user, err := sess.Login(cmd.Context(), form.Email, form.Password)
				if err != nil {
					return err
				}
				a.success("Welcome back, %s", user.FullName())
				fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Email, user.Role.Label())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func (a *App) signupCommand() *cobra.Command {
	var form wire.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.fill(
				field("First name", &form.FirstName),
				field("Last name", &form.LastName),
				field("Email", &form.Email),
				field("Organization", &form.Organization),
				secret("Password", &form.Password),
				secret("Confirm password", &form.ConfirmPassword),
			)
			if err != nil {
				return err
			}
			if r, err := identity.ParseRole(form.Role); err == nil {
				form.Role = r.String()
			}
			if err := validation.Struct(form); err != nil {
				return err
			}

			return a.withSession(cmd.Context(), func(sess *securevault.Session) error {
				user, err := sess.Signup(cmd.Context(), identity.SignupRequest{
					Email:        form.Email,
					Password:     form.Password,
					FirstName:    form.FirstName,
					LastName:     form.LastName,
					Role:         identity.Role(form.Role),
					Organization: form.Organization,
				})
				if err != nil {
					return err
				}
				a.success("Account created. Welcome, %s", user.FullName())
				fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Email, user.Role.Label())
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.FirstName, "first-name", "", "first name")
	f.StringVar(&form.LastName, "last-name", "", "last name")
	f.StringVarP(&form.Email, "email", "e", "", "account email")
	f.StringVarP(&form.Password, "password", "p", "", "password (prompted when omitted)")
	f.StringVar(&form.ConfirmPassword, "confirm-password", "", "password again (prompted when omitted)")
	f.StringVar(&form.Role, "role", identity.RoleClient.String(), "client, admin or ethical_hacker")
	f.StringVar(&form.Organization, "organization", "", "organization name")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(sess *securevault.Session) error {
				wasSignedIn := sess.IsAuthenticated()
				if err := sess.Logout(cmd.Context()); err != nil {
					return err
				}
				if wasSignedIn {
					a.success("Signed out")
				} else {
					fmt.Fprintln(a.out, "Not signed in")
				}
				return nil
			})
		},
	}
}

type statusOutput struct {
	Authenticated bool           `json:"authenticated"`
	Profile       string         `json:"profile"`
	User          *identity.User `json:"user,omitempty"`
	Permissions   []string       `json:"permissions,omitempty"`
}

func (a *App) statusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(sess *securevault.Session) error {
				st := sess.State()
				out := statusOutput{Authenticated: st.Authenticated, Profile: a.cfg.Profile, User: st.User}
				if st.User != nil {
					out.Permissions = a.policy().Permissions(st.User.Role)
				}
				if asJSON {
					return writeJSON(a.out, out)
				}

				if !st.Authenticated {
					fmt.Fprintf(a.out, "Not signed in (profile %s)\n", a.cfg.Profile)
					return nil
				}
				u := st.User
				a.heading(u.FullName() + " [" + u.Initials() + "]")
				fmt.Fprintf(a.out, "Email:        %s\n", u.Email)
				fmt.Fprintf(a.out, "Role:         %s\n", u.Role.Label())
				fmt.Fprintf(a.out, "Organization: %s\n", u.Organization)
				mutedColor.Fprintf(a.out, "Profile %s, %d permissions\n", a.cfg.Profile, len(out.Permissions))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *App) resetPasswordCommand() *cobra.Command {
	var form wire.PasswordResetRequest

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fill(field("Email", &form.Email)); err != nil {
				return err
			}
			if err := validation.Struct(form); err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(sess *securevault.Session) error {
				msg, err := sess.ResetPassword(cmd.Context(), form.Email)
				if err != nil {
					return err
				}
				a.success("%s", msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "account email")
	return cmd
}

func (a *App) recoverCommand() *cobra.Command {
	var (
		form     wire.RecoveryRequest
		question int
	)

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover an account with a security question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			questions := validation.SecurityQuestions()
			if question < 1 || question > len(questions) {
				return fmt.Errorf("%w: --question must be between 1 and %d", errInvalidFlag, len(questions))
			}
			form.SecurityQuestion = questions[question-1]

			if err := a.fill(field("Email", &form.Email)); err != nil {
				return err
			}
			if form.SecurityAnswer == "" {
				fmt.Fprintln(a.errOut, form.SecurityQuestion)
			}
			if err := a.fill(field("Answer", &form.SecurityAnswer)); err != nil {
				return err
			}
			if err := validation.Struct(form); err != nil {
				return err
			}

			return a.withSession(cmd.Context(), func(sess *securevault.Session) error {
				msg, err := sess.RecoverAccount(cmd.Context(), form.Email, form.SecurityAnswer)
				if err != nil {
					return err
				}
				a.success("%s", msg)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&form.Email, "email", "e", "", "account email")
	f.IntVarP(&question, "question", "q", 1, "security question number")
	f.StringVar(&form.SecurityAnswer, "answer", "", "answer to the security question")
	return cmd
}

var errInvalidFlag = errors.New("invalid flag")

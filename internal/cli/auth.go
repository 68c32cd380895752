package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/service"
)

func newLoginCmd(a *app) *cobra.Command {
	var (
		form service.LoginForm
		role string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		Example: `  dailyskills login --email asha@example.com --password secret1
  dailyskills login --email asha@example.com --password secret1 --role employer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				if role != "" {
					r, err := domain.ParseRole(role)
					if err != nil {
						return err
					}
					if err := a.session.SetRole(r); err != nil {
						return err
					}
				}

				identity, err := a.flow.SubmitLogin(cmd.Context(), form)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Signed in as %s (%s)\n", displayName(identity), identity.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", "", "account type to use when the account has none: worker or employer")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var (
		form service.RegisterForm
		role string
	)

	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create a worker or employer account",
		Example: `  dailyskills register --name Asha --email asha@example.com --password secret1 --role worker`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confirm-password") {
				form.ConfirmPassword = form.Password
			}
			form.Role = domain.Role(role)

			return a.run(func() error {
				identity, err := a.flow.SubmitRegister(cmd.Context(), form)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Welcome, %s! Your %s account is ready.\n", displayName(identity), identity.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "password again (defaults to --password)")
	cmd.Flags().StringVar(&role, "role", "", "account type: worker or employer")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the remembered account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				identity, err := a.signedIn()
				if err != nil {
					fmt.Fprintln(a.out, "Not signed in")
					return nil
				}
				if err := a.api.Logout(cmd.Context(), identity.Token); err != nil {
					a.log.Warn().Err(err).Msg("failed to revoke token")
				}
				a.session.Logout(cmd.Context())
				fmt.Fprintln(a.out, "Signed out")
				return nil
			})
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				snap := a.session.Snapshot()
				fmt.Fprintf(a.out, "state: %s\n", snap.State)
				if snap.Identity != nil {
					fmt.Fprintf(a.out, "role:  %s\n", snap.Role)
					fmt.Fprintf(a.out, "user:  %s <%s> (%s)\n", displayName(snap.Identity), snap.Identity.Email, snap.Identity.ID)
				}
				return nil
			})
		},
	}
}

func displayName(identity *domain.Identity) string {
	if identity.Name != "" {
		return identity.Name
	}
	return identity.Email
}

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/smart-review/smart-review-cli/internal/authn"
	"github.com/smart-review/smart-review-cli/internal/routing"
	"github.com/smart-review/smart-review-cli/internal/ui"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	loginFrom     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := commonSetUp(cmd)
		if err != nil {
			return err
		}

		nav := routing.NewNavigator(a.store, a.invalidated, a.log, routing.LoginPath)
		defer nav.Close()
		if loginFrom != "" {
			nav.Navigate(loginFrom)
		}

		email, password := loginEmail, loginPassword
		if email == "" || password == "" {
			if !interactive() {
				return errors.New("--email and --password are required when not running in a terminal")
			}
			if email, password, err = ui.Credentials(email); err != nil {
				return err
			}
		}

		resp, err := a.svc.Auth.Login(a.ctx, email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		nav.AfterLogin()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Logged in as %s (%s)", resp.User.FullName, resp.User.Role)))
		fmt.Fprintf(out, "Landing on %s\n", nav.Current())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := commonSetUp(cmd)
		if err != nil {
			return err
		}

		wasLoggedIn := a.store.IsAuthenticated()
		if err := a.svc.Auth.Logout(); err != nil {
			return err
		}
		if wasLoggedIn {
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user as the server sees them",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := commonSetUp(cmd)
		if err != nil {
			return err
		}
		if !a.store.IsAuthenticated() {
			return errNotLoggedIn
		}

		token := a.store.Token()
		user, err := a.svc.Auth.Me(a.ctx)
		if err != nil {
			return explain(err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Identity(*user, routing.Menu(user.Role)))
		if expiry, ok := authn.Expiry(token); ok {
			fmt.Fprintf(out, "Session expires %s (in %s)\n",
				expiry.Local().Format(time.RFC1123), time.Until(expiry).Round(time.Minute))
		}
		return nil
	},
}

var routeCmd = &cobra.Command{
	Use:   "route [path]",
	Short: "Show where navigating to a screen would take the current user",
	Long: `With a path, shows where navigating to it would land. Without one, lists
every screen and whether the current user may open it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := commonSetUp(cmd)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			identity := a.store.Identity()
			for _, r := range routing.Routes() {
				d := routing.Resolve(identity, r.Path)
				verdict := "allowed"
				if !d.Allow {
					verdict = "redirected to " + d.RedirectTo
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-26s %-22s %s\n", r.Path, r.Title, verdict)
			}
			return nil
		}

		nav := routing.NewNavigator(a.store, a.invalidated, a.log, args[0])
		defer nav.Close()

		out := cmd.OutOrStdout()
		requested := routing.Clean(args[0])
		if nav.Current() == requested {
			fmt.Fprintf(out, "%s: allowed\n", requested)
		} else {
			fmt.Fprintf(out, "%s: redirected to %s\n", requested, nav.Current())
		}
		if from := nav.ReturnTo(); from != "" {
			fmt.Fprintf(out, "after login: %s\n", from)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, routeCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	loginCmd.Flags().StringVar(&loginFrom, "from", "", "screen to return to after login")
}

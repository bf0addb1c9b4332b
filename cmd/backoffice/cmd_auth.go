package main

import (
	"github.com/spf13/cobra"

	"github.com/ambikamber/ambikamber.com/internal/port"
)

var (
	loginEmail    string
	registerName  string
	registerPhone string
	refreshMe     bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a customer account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		cli.notify.Success(cmd.Context(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who the stored session belongs to",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVar(&registerName, "name", "", "full name")
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "phone number")
	whoamiCmd.Flags().BoolVar(&refreshMe, "refresh", false, "re-read the profile from the backend")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, password, err := cli.prompt.Credentials(loginEmail)
	if err != nil {
		return err
	}
	_, err = cli.auth.Login(cmd.Context(), email, password)
	return err
}

func runRegister(cmd *cobra.Command, args []string) error {
	email, password, err := cli.prompt.Credentials(loginEmail)
	if err != nil {
		return err
	}
	sess, err := cli.auth.Register(cmd.Context(), port.RegisterInput{
		Name:     registerName,
		Email:    email,
		Phone:    registerPhone,
		Password: password,
	})
	if err != nil {
		return err
	}
	cli.notify.Success(cmd.Context(), "Welcome, "+sess.User.Name)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := cli.auth.Current(ctx)
	if err != nil {
		return err
	}
	if refreshMe {
		if sess, err = cli.auth.Refresh(ctx); err != nil {
			return err
		}
	}
	cli.printf("%s <%s>\n", styles.Bold.Render(sess.User.Name), sess.User.Email)
	cli.printf("Role: %s\n", renderRole(sess.User.Role))
	return nil
}

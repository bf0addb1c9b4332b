// Command backoffice is the operator CLI for the Ambikamber storefront:
// order and user administration behind confirmation prompts, categories,
// and the customer cart and checkout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Built once flags are parsed
	cli *app
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Ambikamber storefront back-office",
	Long: `backoffice drives the Ambikamber storefront backend from a terminal.

Admins manage orders, users and categories. Status and role changes are
only sent after they are confirmed, twice for critical ones. Customers can
manage their cart, check out and follow their orders.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cli, err = newApp(configPath, verbose, cmd.OutOrStdout(), cmd.ErrOrStderr())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cli != nil {
			_ = cli.logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ambikamber/backoffice.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// Package cli implements the securevault command.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Execute runs the securevault command with the process arguments and
// returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(os.Stdin, os.Stdout, os.Stderr)
	cmd := app.Command()
	cmd.SetArgs(os.Args[1:])
	return app.run(ctx, cmd)
}

func (a *App) run(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	a.log.Sync()
	if err == nil {
		return 0
	}
	a.failure(err)
	return 1
}

// Command builds the root command and its subcommands.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "securevault",
		Short: "SecureVault session client",
		Long: `securevault signs in to the SecureVault penetration testing portal,
keeps the signed-in user between runs and shows the dashboard of its role.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default is $HOME/.securevault/config.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("profile", "", "profile separating stored sessions")
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("profile", flags.Lookup("profile"))

	root.AddCommand(
		a.loginCommand(),
		a.signupCommand(),
		a.logoutCommand(),
		a.statusCommand(),
		a.resetPasswordCommand(),
		a.recoverCommand(),
		a.dashboardCommand(),
		a.tasksCommand(),
		a.usersCommand(),
		a.serveCommand(),
	)
	return root
}

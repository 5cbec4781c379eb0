// Package cli implements shufflectl, which runs team formation and bracket
// pairing against a roster file without the web server.
package cli

import (
	"log/slog"

	"github.com/AdamBeresnev/op-shuffle/internal/config"
	"github.com/AdamBeresnev/op-shuffle/internal/random"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	seed     uint64
	logLevel string
}

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "shufflectl",
		Short: "Form balanced inhouse teams and brackets",
		Long: `shufflectl reads a YAML roster, splits it into role-aware teams of
five with balanced average MMR, and can pair those teams into a
single-elimination bracket.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Uint64Var(&opts.seed, "seed", 0, "shuffle seed, 0 picks one at random")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "WARN", "DEBUG, INFO, WARN or ERROR")

	cmd.AddCommand(
		newShuffleCmd(opts),
		newBracketCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}

func (o *globalOptions) source() random.Source {
	if o.seed == 0 {
		return random.NewLocked(nil)
	}
	return random.NewSeeded(o.seed)
}

func (o *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: config.ParseLevel(o.logLevel),
	}))
}

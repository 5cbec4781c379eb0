package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/AdamBeresnev/op-shuffle/internal/random"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/spf13/cobra"
)

type formOptions struct {
	roster string
	teams  int
}

func (f *formOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.roster, "roster", "r", "", "YAML roster file")
	cmd.Flags().IntVarP(&f.teams, "teams", "t", 0, "number of teams, 0 picks the largest that fits")
	_ = cmd.MarkFlagRequired("roster")
}

func (f *formOptions) form(cmd *cobra.Command, g *globalOptions, src random.Source) (*team.Result, error) {
	players, err := loadRoster(f.roster)
	if err != nil {
		return nil, err
	}
	eligible := team.FilterEligible(players)
	if skipped := len(players) - len(eligible); skipped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipping %d absent, reserve or banned players\n", skipped)
	}
	return team.NewFormer(src, g.logger(cmd)).Form(eligible, f.teams)
}

func newShuffleCmd(g *globalOptions) *cobra.Command {
	var (
		form   formOptions
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "shuffle",
		Short: "Split a roster into balanced teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := form.form(cmd, g, g.source())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printTeams(cmd.OutOrStdout(), res)
		},
	}

	form.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printTeams(w io.Writer, res *team.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, t := range res.Teams {
		fmt.Fprintf(tw, "%s\tavg %d\n", t.Name, t.AvgMMR)
		for _, p := range t.Players {
			fmt.Fprintf(tw, "  %s\t%d\t%s\n", p.Name, p.MMR, strings.Join(p.Roles.Strings(), ", "))
		}
	}
	if len(res.Reserved) > 0 {
		fmt.Fprintln(tw, "Reserve")
		for _, p := range res.Reserved {
			fmt.Fprintf(tw, "  %s\t%d\t%s\n", p.Name, p.MMR, strings.Join(p.Roles.Strings(), ", "))
		}
	}
	b := res.Balance
	fmt.Fprintf(tw, "\naverage %d\tspread %d\tvariance %d\tswaps %d\n", b.AverageMMR, b.Spread, b.Variance, res.Swaps)
	return tw.Flush()
}

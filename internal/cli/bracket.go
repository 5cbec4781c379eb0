package cli

import (
	"fmt"
	"io"

	"github.com/AdamBeresnev/op-shuffle/internal/bracket"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newBracketCmd(g *globalOptions) *cobra.Command {
	var form formOptions

	cmd := &cobra.Command{
		Use:   "bracket",
		Short: "Form teams and pair them into a single-elimination bracket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := g.source()
			res, err := form.form(cmd, g, src)
			if err != nil {
				return err
			}
			matches, err := bracket.Build(uuid.New(), res.TeamNames(), src)
			if err != nil {
				return err
			}
			if err := printTeams(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			printBracket(cmd.OutOrStdout(), len(res.Teams), matches)
			return nil
		},
	}

	form.bind(cmd)
	return cmd
}

func printBracket(w io.Writer, numTeams int, matches []bracket.Match) {
	total := bracket.TotalRounds(numTeams)
	rounds, order := bracket.GroupRounds(matches)
	for _, r := range order {
		fmt.Fprintln(w, bracket.RoundName(r, total))
		for _, m := range rounds[r] {
			fmt.Fprintf(w, "  Match %d: %s vs %s\n", m.MatchNumber, slotLabel(m.Team1Name), slotLabel(m.Team2Name))
		}
	}
}

func slotLabel(name *string) string {
	if name == nil {
		return "TBD"
	}
	return *name
}

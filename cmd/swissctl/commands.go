package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	Format string // "text" | "json"
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "swissctl",
		Short:         "Offline Swiss pairing and standings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", opts.Format)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newPairCommand(opts))
	cmd.AddCommand(newStandingsCommand(opts))
	return cmd
}

func newPairCommand(rootOpts *rootOptions) *cobra.Command {
	var round int
	var noRematches bool

	cmd := &cobra.Command{
		Use:   "pair <snapshot.json>",
		Short: "Pair the next round",
		Long: `Pair a round from the players and game history in the snapshot.

By default the round after the highest round in the snapshot is paired.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			if round == 0 {
				round = snap.nextRoundNumber()
			}
			policy := brackets.DefaultPolicy()
			policy.AllowRematches = !noRematches

			out, pairings, err := brackets.NewSwissGenerator(policy).GenerateRound(brackets.GenerateRoundParams{
				Players:     snap.Players,
				RoundNumber: round,
				History:     snap.Pairings,
			})
			if err != nil {
				return err
			}
			return writePairings(cmd.OutOrStdout(), rootOpts.Format, out.Number, pairings, snap.playerIndex())
		},
	}
	cmd.Flags().IntVar(&round, "round", 0, "round number to pair (default: next round)")
	cmd.Flags().BoolVar(&noRematches, "no-rematches", false, "fail instead of pairing players who already met")
	return cmd
}

func newStandingsCommand(rootOpts *rootOptions) *cobra.Command {
	var progress bool

	cmd := &cobra.Command{
		Use:   "standings <snapshot.json>",
		Short: "Print the standings table with tie-breaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			if progress {
				rows := brackets.ComputeProgress(snap.Players, snap.Pairings, snap.Rounds)
				return writeProgress(cmd.OutOrStdout(), rootOpts.Format, rows)
			}
			stats := brackets.ComputeStandings(snap.Players, snap.Pairings, snap.Rounds)
			return writeStandings(cmd.OutOrStdout(), rootOpts.Format, stats)
		},
	}
	cmd.Flags().BoolVar(&progress, "progress", false, "print points per round instead of tie-breaks")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePairings(w io.Writer, format string, round int, pairings []models.Pairing, players map[uuid.UUID]models.Player) error {
	if format == "json" {
		return writeJSON(w, struct {
			Round    int              `json:"round_number"`
			Pairings []models.Pairing `json:"pairings"`
		}{round, pairings})
	}

	fmt.Fprintf(w, "Round %d pairings:\n", round)
	for _, p := range pairings {
		white, black := players[p.WhiteID], players[p.BlackID]
		fmt.Fprintf(w, "  Board %d: %s(%d) vs. %s(%d)\n", p.TableNumber, white.Name, white.Rating, black.Name, black.Rating)
	}
	return nil
}

func writeStandings(w io.Writer, format string, stats []models.PlayerStat) error {
	if format == "json" {
		return writeJSON(w, stats)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tName\tRating\tPts\tPM\tBH\tBH-C1\tProg\tSB\tW\t")
	for _, s := range stats {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%g\t%g\t%g\t%g\t%g\t%g\t%d\t\n",
			s.Rank, s.Player.Name, s.Player.Rating, s.Score, s.PersonalMeetings,
			s.Buchholz, s.BuchholzCut1, s.Progressive, s.SonnebornBerger, s.Wins)
	}
	return tw.Flush()
}

func writeProgress(w io.Writer, format string, rows []models.ProgressRow) error {
	if format == "json" {
		return writeJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t", row.Position, row.Player.Name)
		for _, pts := range row.RoundPoints {
			if pts == nil {
				fmt.Fprint(tw, "-\t")
				continue
			}
			fmt.Fprintf(tw, "%g\t", *pts)
		}
		fmt.Fprintf(tw, "%g\t\n", row.Total)
	}
	return tw.Flush()
}

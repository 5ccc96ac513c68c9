package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/swipequiz/internal/script"
)

var (
	replayDeck   string
	replayScript string
)

// replayCmd runs a gesture script against a deck without a UI
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a scripted gesture sequence",
	Long: `Replay a YAML gesture script against a YAML deck, settling every
animation, and print the accepted and rejected card ids.`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayDeck, "deck", "", "YAML deck file")
	replayCmd.Flags().StringVar(&replayScript, "script", "", "YAML gesture script")
	_ = replayCmd.MarkFlagRequired("deck")
	_ = replayCmd.MarkFlagRequired("script")
}

func runReplay(cmd *cobra.Command, args []string) error {
	ecfg, err := engineConfig()
	if err != nil {
		return err
	}
	deck, err := script.LoadDeck(replayDeck)
	if err != nil {
		return err
	}
	sc, err := script.LoadScript(replayScript)
	if err != nil {
		return err
	}

	res, err := script.Run(deck, sc, ecfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "state: %s (%d/%d)\n", res.State, res.Cursor, len(deck.Activities))
	fmt.Fprintf(out, "accepted: %v\n", res.Accepted)
	fmt.Fprintf(out, "rejected: %v\n", res.Rejected)
	fmt.Fprintf(out, "ignored events: %d\n", res.Ignored)
	if res.Submissions > 0 {
		fmt.Fprintln(out, "deck exhausted, results would be submitted")
	}
	return nil
}

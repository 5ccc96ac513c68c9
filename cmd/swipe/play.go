package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/vytor/swipequiz/internal/catalog"
	"github.com/vytor/swipequiz/internal/config"
	"github.com/vytor/swipequiz/internal/logger"
	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/script"
	"github.com/vytor/swipequiz/internal/tui"
)

var (
	playDeck   string
	playAPIURL string
)

// playCmd runs the interactive terminal client
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Swipe a deck interactively",
	Long: `Swipe a deck interactively.

Cards come from a YAML deck (--deck) or from the quiz API (--api-url, or
API_URL). With the API, decisions are posted back once the deck runs out.

Keys: ←/→ drag by 40 units, space releases, h plays the hint, q quits.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playDeck, "deck", "", "YAML deck file")
	playCmd.Flags().StringVar(&playAPIURL, "api-url", "", "quiz API base URL (defaults to API_URL)")
	playCmd.MarkFlagsMutuallyExclusive("deck", "api-url")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// keep the log off the terminal the UI owns
	if logFile == "" {
		logger.SetDefault(logger.New(logger.WithOutput(io.Discard)))
	}

	ecfg, err := engineConfig()
	if err != nil {
		return err
	}

	var (
		activities []models.Activity
		submit     tui.SubmitFunc
	)
	if playDeck != "" {
		deck, err := script.LoadDeck(playDeck)
		if err != nil {
			return err
		}
		activities = deck.Activities
	} else {
		cfg := config.Load()
		url := cfg.APIURL
		if playAPIURL != "" {
			url = playAPIURL
		}
		client := catalog.New(url, cfg.APITimeout)
		activities, err = client.FetchActivities(ctx)
		if err != nil {
			return fmt.Errorf("fetch activities: %w", err)
		}
		submit = client.SubmitSwipes
	}

	if len(activities) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no activities to swipe")
		return nil
	}

	model, err := tui.New(activities, ecfg, submit)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}

	accepted, rejected := 0, 0
	for _, d := range model.Decisions() {
		if d.SwipeRight {
			accepted++
		} else {
			rejected++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "judged %d of %d cards: %d accepted, %d rejected\n", accepted+rejected, len(activities), accepted, rejected)
	return nil
}

package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mixtape/internal/player"
	"github.com/desertthunder/mixtape/internal/ui"
)

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "play",
		Usage:  "Open the terminal player",
		Action: r.Play,
	}
}

// Play wires the audio sink, controller and store into the TUI and runs it.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	store, db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	client := r.newCatalog()

	notices := make(chan player.Notice, 16)
	notifier := player.NotifierFunc(func(n player.Notice) {
		select {
		case notices <- n:
		default:
		}
	})

	sink := player.NewBeepSink(r.httpClient)
	controller := player.NewController(sink, client, notifier, r.logger)
	controller.SetVolume(r.config.Player.Volume)

	model := ui.NewModel(ctx, client, store, controller, notices)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("player exited with error: %w", err)
	}

	return nil
}

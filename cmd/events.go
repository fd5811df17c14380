/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Emiliocodings/ServiceUsers/config"
	"github.com/Emiliocodings/ServiceUsers/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect user change events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print user change events as they arrive",
	Long: `Subscribes to the configured events channel and prints each event
as one JSON line. Requires EVENTS_BACKEND to be rabbitmq or pubsub.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := mq.Connect(ctx, cfg.Events)
		if errors.Is(err, mq.ErrDisabled) {
			return errors.New("EVENTS_BACKEND is not set")
		}
		if err != nil {
			return err
		}
		defer func() {
			_ = events.Close()
		}()

		out := cmd.OutOrStdout()
		err = events.Subscribe(ctx, cfg.Events.Channel, func(_ context.Context, msg mq.Message) error {
			_, err := fmt.Fprintln(out, string(msg.Data))
			return err
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}

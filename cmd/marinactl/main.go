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
	apiFlag    string
	holderFlag string
	rootCmd    = &cobra.Command{
		Use:   "marinactl",
		Short: "CLI client for the booking service REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Booking service base URL")

	// book subcommand
	bookCmd := &cobra.Command{
		Use:   "book <resource-id>",
		Short: "Book a resource for a time interval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			if holderFlag == "" {
				return fmt.Errorf("--holder required")
			}
			return runBook(apiFlag, args[0], holderFlag, start, end, os.Stdout)
		},
	}
	bookCmd.Flags().StringVarP(&holderFlag, "holder", "H", "", "Actor ID of the booking holder (required)")
	bookCmd.Flags().StringP("start", "s", "", "Interval start, RFC3339 (required)")
	bookCmd.Flags().StringP("end", "e", "", "Interval end, RFC3339 (required)")
	_ = bookCmd.MarkFlagRequired("start")
	_ = bookCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(bookCmd)

	// cancel subcommand
	cancelCmd := &cobra.Command{
		Use:   "cancel <reservation-id>",
		Short: "Cancel a confirmed booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if holderFlag == "" {
				return fmt.Errorf("--holder required")
			}
			return runCancel(apiFlag, args[0], holderFlag, os.Stdout)
		},
	}
	cancelCmd.Flags().StringVarP(&holderFlag, "holder", "H", "", "Actor ID of the booking holder (required)")
	rootCmd.AddCommand(cancelCmd)

	// bookings subcommand
	bookingsCmd := &cobra.Command{
		Use:   "bookings <resource-id>",
		Short: "List confirmed bookings for a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListBookings(apiFlag, args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(bookingsCmd)

	// availability subcommand
	availCmd := &cobra.Command{
		Use:   "availability <resource-id>",
		Short: "Show slot availability for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			return runDayAvailability(apiFlag, args[0], date, os.Stdout)
		},
	}
	availCmd.Flags().StringP("date", "d", "", "Day to query, YYYY-MM-DD (required)")
	_ = availCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(availCmd)

	// watch subcommand
	watchCmd := &cobra.Command{
		Use:   "watch <actor-id>",
		Short: "Stream live notifications for an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, _ := cmd.Flags().GetString("role")
			return runWatch(cmd.Context(), apiFlag, args[0], role, os.Stdout)
		},
	}
	watchCmd.Flags().StringP("role", "r", "member", "Actor role (member, owner, provider, admin)")
	rootCmd.AddCommand(watchCmd)

	// ctrl-c cancels the command context so watch disconnects cleanly
	// instead of dying mid-read.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

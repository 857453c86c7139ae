package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timetable-cli",
	Short: "timetable-cli fetches and inspects e-journal schedules from the command line.",
}

var rawCookies *string
var cookieFile *string
var baseUrl *string
var endpoint *string

func init() {
	rawCookies = rootCmd.PersistentFlags().String("cookies", "", "Raw cookie string copied from the browser.")
	cookieFile = rootCmd.PersistentFlags().String("cookie-file", "", "File containing the raw cookie string.")
	baseUrl = rootCmd.PersistentFlags().String("base-url", "", "Base url of the e-journal portal.")
	endpoint = rootCmd.PersistentFlags().String("endpoint", "/schedule", "Schedule page endpoint.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

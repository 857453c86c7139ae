package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(testCmd)
}

var testCmd = &cobra.Command{
	Use:   "test --base-url <url> --cookies <raw>",
	Short: "Checks whether the provided cookies still grant access to the portal.",
	Run: func(cmd *cobra.Command, args []string) {
		raw := readRawCookies()
		svc := createService()

		if svc.TestConnection(cmd.Context(), raw) {
			fmt.Println("ok: portal reachable, session accepted")
			return
		}
		fmt.Println("failed: portal unreachable or session expired")
		os.Exit(1)
	},
}

package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"timetablebot-backend/lib/restyutil"
	"timetablebot-backend/lib/scrapers/ejournal"
	"timetablebot-backend/lib/serviceutil"
	"timetablebot-backend/services/timetable"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var fetchOffset *int
var fetchMessage *bool
var fetchIcs *string

func init() {
	fetchOffset = fetchCmd.Flags().Int("offset", 0, "Day offset relative to today.")
	fetchMessage = fetchCmd.Flags().Bool("message", false, "Print the chat message instead of a table.")
	fetchIcs = fetchCmd.Flags().String("ics", "", "Write the day as an iCalendar file to this path.")
	rootCmd.AddCommand(fetchCmd)
}

func readRawCookies() string {
	if *rawCookies != "" {
		return *rawCookies
	}
	if *cookieFile != "" {
		data, err := os.ReadFile(*cookieFile)
		if err != nil {
			serviceutil.Fatal("failed to read cookie file", err)
		}
		return strings.TrimSpace(string(data))
	}
	serviceutil.Fatal("no cookies provided", fmt.Errorf("pass --cookies or --cookie-file"))
	return ""
}

func createService() timetable.Service {
	if *baseUrl == "" {
		serviceutil.Fatal("no portal provided", fmt.Errorf("pass --base-url"))
	}
	client := ejournal.NewClient(ejournal.ClientOptions{
		BaseUrl:          *baseUrl,
		ScheduleEndpoint: *endpoint,
		Timeout:          time.Second * 30,
	})
	client.SetInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/timetable-cli"))
	return timetable.NewService(client)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch --base-url <url> [--cookies <raw>] [--offset <n>]",
	Short: "Fetches a day of the schedule and prints it.",
	Run: func(cmd *cobra.Command, args []string) {
		raw := readRawCookies()
		svc := createService()

		if *fetchMessage {
			msg, err := svc.Message(cmd.Context(), raw, *fetchOffset)
			if err != nil {
				serviceutil.Fatal("failed to fetch schedule", err)
			}
			fmt.Println(msg)
			return
		}

		day, err := svc.Day(cmd.Context(), raw, *fetchOffset)
		if err != nil {
			serviceutil.Fatal("failed to fetch schedule", err)
		}

		if *fetchIcs != "" {
			ics, err := timetable.ExportICS(day)
			if err != nil {
				serviceutil.Fatal("failed to export ics", err)
			}
			err = os.WriteFile(*fetchIcs, []byte(ics), 0644)
			if err != nil {
				serviceutil.Fatal("failed to write ics file", err)
			}
		}

		if len(day.Lessons) == 0 {
			fmt.Printf("no lessons on %s\n", day.Date.Format("02.01.2006"))
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Time", "Subject", "Room", "Teacher", "Group"})
		for i, lesson := range day.Lessons {
			t.AppendRow(table.Row{
				i + 1, lesson.Time, lesson.Subject,
				lesson.Room, lesson.Teacher, lesson.Group,
			})
		}
		t.Render()
	},
}

package main

import (
	"context"

	"timetablebot-backend/cmd/timetable-cli/commands"
	"timetablebot-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "timetable-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}

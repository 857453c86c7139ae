package main

type JournalConfig struct {
	BaseUrl string `json:"base_url"`
	// path of the schedule page on the portal
	ScheduleEndpoint string `json:"schedule_endpoint"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	MaxRetries       int    `json:"max_retries"`
}

type TelegramConfig struct {
	Token string `json:"token"`
}

type NotifyConfig struct {
	// daily send time as "HH:MM" in the portal's timezone
	Time string `json:"time"`
}

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Journal  JournalConfig  `json:"journal"`
	Notify   NotifyConfig   `json:"notify"`
	// path of the sqlite database holding user state
	Database string `json:"database"`
	Verbose  bool   `json:"verbose"`
}

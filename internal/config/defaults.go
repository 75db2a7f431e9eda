package config

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/vyomarr",
			LogDir:  "~/.local/share/vyomarr/logs",
			APIBind: "127.0.0.1:7491",
		},
		Scheduler: Scheduler{
			Enabled:              true,
			SweepIntervalSeconds: 60,
			StopTimeoutSeconds:   10,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Publish:        true,
			RatePerMinute:  30,
		},
		Logging: Logging{
			Format:        "console",
			Level:         "info",
			RetentionDays: 30,
		},
	}
}

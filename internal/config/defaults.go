package config

const (
	defaultLogDir             = "~/.local/share/docflow/logs"
	defaultPollInterval       = 1
	defaultErrorRetryInterval = 5
	defaultStageDelayMillis   = 250
	defaultStageTimeoutSecs   = 30
	defaultMaxActiveDocuments = 4
	defaultDocumentType       = "correspondence"
	defaultConfidence         = 0.35
	defaultDestination        = "archive"
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Workflow: Workflow{
			PollInterval:       defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			StageDelayMillis:   defaultStageDelayMillis,
			StageTimeoutSecs:   defaultStageTimeoutSecs,
			MaxActiveDocuments: defaultMaxActiveDocuments,
		},
		Classifier: Classifier{
			Rules: map[string][]string{
				"invoice":  {"invoice", "amount due", "remittance", "total"},
				"contract": {"contract", "agreement", "hereinafter", "party"},
				"report":   {"report", "summary", "findings", "analysis"},
			},
			DefaultType:       defaultDocumentType,
			DefaultConfidence: defaultConfidence,
		},
		Routing: Routing{
			Rules: map[string]string{
				"invoice":  "accounting",
				"contract": "legal",
				"report":   "records",
			},
			DefaultDestination: defaultDestination,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Routed:         true,
			Intervention:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

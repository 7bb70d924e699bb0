package config

import "time"

// Poll loop tuning. The per-attempt timeout bounds each status fetch against
// the remote API; the overall deadline bounds the whole wait for one run.
func GetPollInterval() time.Duration {
	return time.Duration(parseEnvInt("POLL_INTERVAL_SECONDS", 1)) * time.Second
}

func GetRequestTimeout() time.Duration {
	return time.Duration(parseEnvInt("REQUEST_TIMEOUT_SECONDS", 20)) * time.Second
}

func GetRunDeadline() time.Duration {
	return time.Duration(parseEnvInt("RUN_DEADLINE_SECONDS", 120)) * time.Second
}

// internal/workers/application/update-application-status/config.go
package updateapplicationstatus

import (
	"time"

	"match-engine/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := wcfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{Timeout: timeout}
}

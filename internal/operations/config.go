package operations

import (
	"time"

	"salesforecast/internal/config"
)

// Config represents the operation execution configuration
type Config struct {
	// DefaultTimeout applies to stages without an explicit entry
	DefaultTimeout time.Duration `json:"default_timeout"`

	// Step-specific timeouts
	StageTimeouts map[string]time.Duration `json:"stage_timeouts"`
}

// NewConfig builds the execution config from the pipeline section
func NewConfig(cfg config.PipelineConfig) *Config {
	timeout := cfg.StageTimeout
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &Config{
		DefaultTimeout: timeout,
		StageTimeouts:  make(map[string]time.Duration),
	}
}

// GetStageTimeout returns the timeout for a specific Step
func (c *Config) GetStageTimeout(stageID string) time.Duration {
	if timeout, ok := c.StageTimeouts[stageID]; ok {
		return timeout
	}
	if c.DefaultTimeout > 0 {
		return c.DefaultTimeout
	}
	return DefaultStageTimeout
}

// SetStageTimeout sets the timeout for a specific Step
func (c *Config) SetStageTimeout(stageID string, timeout time.Duration) {
	if c.StageTimeouts == nil {
		c.StageTimeouts = make(map[string]time.Duration)
	}
	c.StageTimeouts[stageID] = timeout
}

package monitor

import "time"

type Status struct {
	Backend    bool          `json:"backend" yaml:"backend"`
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	Latency    time.Duration `json:"latency" yaml:"latency"`
	ServerTime time.Time     `json:"server_time,omitzero" yaml:"server_time,omitempty"`
	LastError  string        `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	LastCheck  time.Time     `json:"last_check" yaml:"last_check"`
}

package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"port": 8080,
		},
		"database": map[string]interface{}{
			"path":      "simplereminder.db",
			"log_level": "silent",
		},
		"scheduler": map[string]interface{}{
			"exact_alarms":       true,
			"inexact_window":     60,  // seconds; inexact wake-ups are rounded up to this boundary
			"delivery_timeout":   10,  // seconds per fired wake-up
			"reconcile_interval": 900, // seconds; 0 disables periodic reconciliation
		},
		"notification": map[string]interface{}{
			"show_due_time": map[string]interface{}{
				"notify": false,
				"nag":    true,
				"reshow": true,
			},
		},
		"line": map[string]interface{}{
			"channel_secret": "",
			"channel_token":  "",
			"recipient_id":   "",
			"endpoint_base":  "",
		},
		"log": map[string]interface{}{
			"debug": false,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "simplereminder.yaml"
}

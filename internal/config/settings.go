package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"

	"ipamd/internal/support"

	"github.com/charmbracelet/log"
)

type Config struct {
	Hosts struct {
		PageLimit   uint32 `json:"page_limit"`
		CursorParam string `json:"cursor_param"`
	} `json:"hosts"`

	Lists struct {
		PageSize    uint32 `json:"page_size"`
		MaxPageSize uint32 `json:"max_page_size"`
	} `json:"lists"`

	Runtime struct {
		UsageSnapshotTimer Timer `json:"usage_snapshot_timer"`
	} `json:"runtime"`

	Bootstrap struct {
		PlanFile string `json:"plan_file"`
	} `json:"bootstrap"`
}

type Timer struct {
	Days    uint32 `json:"days"`
	Hours   uint32 `json:"hours"`
	Minutes uint32 `json:"minutes"`
	Seconds uint32 `json:"seconds"`
}

const defaultSettingsFile = "data/settings.json"

func settingsFile() string {
	return support.GetEnv("IPAMD_SETTINGS_FILE", defaultSettingsFile)
}

var (
	//go:embed default_settings.json
	defaultConfig []byte

	configValue atomic.Value

	InProductionMode bool
)

func init() {
	configValue.Store(Config{})
}

func ReadSettings() {
	path := settingsFile()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Settings file not found, creating with default configuration")

			if err = os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
				log.Error("Error creating directory for settings file:", err)
				return
			}
			if err = os.WriteFile(path, defaultConfig, os.ModePerm); err != nil {
				log.Error("Error writing default settings file:", err)
				return
			}
			data = defaultConfig
		} else {
			log.Error("Error reading settings file:", err)
			return
		}
	}

	var newConfig Config
	if err = json.Unmarshal(data, &newConfig); err != nil {
		log.Error("Error unmarshalling settings file:", err)
		return
	}

	configValue.Store(newConfig)
	log.Debug("Settings file loaded successfully")
}

func GetConfig() Config {
	return configValue.Load().(Config)
}

// SetConfig swaps the in-memory configuration. It does not touch the
// settings file; callers that want the change to survive a restart call
// SaveSettings afterwards.
func SetConfig(newConfig Config) {
	configValue.Store(newConfig)
}

// SaveSettings persists the current configuration to the settings file.
func SaveSettings() error {
	data, err := json.MarshalIndent(GetConfig(), "", "  ")
	if err != nil {
		return err
	}

	path := settingsFile()
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, data, os.ModePerm)
}

func SetProductionMode(enabled bool) {
	InProductionMode = enabled
}

package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	Output         string `mapstructure:"output"`
	ProbeWorkers   int    `mapstructure:"probe_workers"`
	CandidatePorts []int  `mapstructure:"candidate_ports"`
}

func Default() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Output:       "table",
		ProbeWorkers: 64,
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("osn-sysutil")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("OSN")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "osn-sysutil")
	case "darwin":
		return "/Library/Application Support/osn-sysutil"
	default:
		return "/etc/osn-sysutil"
	}
}

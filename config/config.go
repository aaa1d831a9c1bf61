package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

//Config holds process-level settings, parsed from GATEKEEPER_* environment
//variables. A .env file loaded before Parse populates the same variables in
//development.
type Config struct {
	DiscordToken string `env:"GATEKEEPER_DISCORD_BOT_TOKEN,required"`
	DBPath       string `env:"GATEKEEPER_DB_PATH" envDefault:"gatekeeper.db"`
	LogLevel     string `env:"GATEKEEPER_LOG_LEVEL" envDefault:"info"`
	//How often the announcer loop checks for due announcements, in seconds.
	AnnouncerIntervalSecs int `env:"GATEKEEPER_ANNOUNCER_INTERVAL" envDefault:"60"`
}

//Parse reads configuration from the environment.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		logrus.Errorf("Failed to parse configuration from environment: %v", err)
		return nil, err
	}
	return &cfg, nil
}

//ApplyLogLevel sets the global logrus level from the configured name,
//falling back to info on an unknown value.
func (c *Config) ApplyLogLevel() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown log level `%v`, falling back to info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

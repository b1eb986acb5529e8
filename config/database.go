package config

import (
	"fmt"
)

type DatabaseConfig struct {
	Host        string `yaml:"host" json:"host" default:"localhost"`
	Port        uint32 `yaml:"port" json:"port" default:"5432"`
	Username    string `yaml:"username" json:"username" default:"keymint"`
	Password    string `yaml:"password" json:"-" default:""`
	Database    string `yaml:"database" json:"database" default:"keymint"`
	MaxPoolSize uint32 `yaml:"max_pool_size" json:"max_pool_size" default:"40"`
	MaxLifetime uint32 `yaml:"max_lifetime" json:"max_lifetime" default:"1800"`
}

func (cfg DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)
}

func (cfg DatabaseConfig) Validate() error {
	if cfg.Port > 65535 {
		return fmt.Errorf("port must be in the range [0, 65535]")
	}
	return nil
}

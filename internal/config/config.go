package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type EscrowConfig struct {
	Env string `yaml:"env"`
	HTTPServer     `yaml:"http_server"`
	EscrowDB       `yaml:"escrow_db"`
	LogConfig      `yaml:"log_config"`
	GatewayService `yaml:"gateway-service"`
	KafkaService   `yaml:"kafka-service"`
	FeeSchedule    `yaml:"fee_schedule"`
	PayrollCron    `yaml:"payroll_cron"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type EscrowDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type GatewayService struct {
	Address string `yaml:"address"`
}

type KafkaService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type FeeSchedule struct {
	PlatformPercent    float64 `yaml:"platform_percent" env-default:"0.08"`
	ProcessingPercent  float64 `yaml:"processing_percent" env-default:"0.029"`
	ProcessingFixed    float64 `yaml:"processing_fixed" env-default:"0.30"`
	WithholdingPercent float64 `yaml:"withholding_percent" env-default:"0.24"`
}

type PayrollCron struct {
	CloseSpec string `yaml:"close_spec" env-default:"0 2 * * MON"`
}

func MustLoad() *EscrowConfig {

	// Processing env config variable and file
	configPath := os.Getenv("ESCROW_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("ESCROW_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg EscrowConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}

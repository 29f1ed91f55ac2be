package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration decodes TOML strings like "5s" or "2m" into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Configs struct {
	Env      string `toml:"env"`
	LogLevel int    `toml:"log_level"`

	Database  DatabaseConfigs `toml:"database"`
	ApiServer ServerConfigs   `toml:"api_server"`
	Auth      AuthConfigs     `toml:"auth"`
	Quest     QuestConfigs    `toml:"quest"`
	ZkVerify  ZkVerifyConfigs `toml:"zk_verify"`
	Escrow    EscrowConfigs   `toml:"escrow"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

type AuthConfigs struct {
	TokenSecret     string   `toml:"token_secret"`
	TokenExpiration Duration `toml:"token_expiration"`
}

type QuestConfigs struct {
	// ApproveXP is granted to the claimant each time one of its claims is
	// approved with rewards enabled.
	ApproveXP    uint64 `toml:"approve_xp"`
	LevelXP      uint64 `toml:"level_xp"`
	DefaultLimit int    `toml:"default_limit"`
	MaxLimit     int    `toml:"max_limit"`
}

type ZkVerifyConfigs struct {
	RelayerURL string `toml:"relayer_url"`
	APIKey     string `toml:"api_key"`

	RegistryURL string `toml:"registry_url"`

	// LocalProverURL points to a self-hosted prover used when every remote
	// proving attempt failed. Empty disables the local fallback.
	LocalProverURL string `toml:"local_prover_url"`

	// Blueprints are tried in order before the built-in defaults.
	Blueprints []string `toml:"blueprints"`

	ProveAttempts     int      `toml:"prove_attempts"`
	JobStatusAttempts int      `toml:"job_status_attempts"`
	PollInterval      Duration `toml:"poll_interval"`
}

type EscrowConfigs struct {
	ContractAddress string `toml:"contract_address"`
	Chain           string `toml:"chain"`
	RPC             string `toml:"rpc"`
}

// Load reads configurations from a TOML file. Secrets can be overridden with
// environment variables so they are never committed with the file. Quest
// tuning falls back to built-in defaults when the section is omitted.
func Load(path string) (Configs, error) {
	var cfg Configs
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, err
	}

	if cfg.Quest.ApproveXP == 0 {
		cfg.Quest.ApproveXP = 50
	}

	if cfg.Quest.LevelXP == 0 {
		cfg.Quest.LevelXP = 100
	}

	if cfg.Quest.DefaultLimit <= 0 {
		cfg.Quest.DefaultLimit = 10
	}

	if cfg.Quest.MaxLimit <= 0 {
		cfg.Quest.MaxLimit = 50
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}

	if v := os.Getenv("ZK_VERIFY_API_KEY"); v != "" {
		cfg.ZkVerify.APIKey = v
	}

	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}

	return cfg, nil
}

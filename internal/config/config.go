// internal/config/config.go
//
// 本檔負責載入 ledger 的設定（viper + pflag）並驗證日誌相關欄位。

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config 為 ledger 指令介面的完整設定。
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Console ConsoleConfig `mapstructure:"console"`
}

// LogConfig 為 zap logger 的設定。
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

// ConsoleConfig 為指令直譯器的設定。
// Script 為空時從 stdin 讀取指令並顯示 Prompt。
type ConsoleConfig struct {
	Prompt string `mapstructure:"prompt"`
	Script string `mapstructure:"script"`
}

// ErrHelp 表示使用者要求 -h/--help，呼叫端應直接結束。
var ErrHelp = pflag.ErrHelp

// Load 依序套用預設值、設定檔、環境變數與命令列旗標，後者覆蓋前者。
// 環境變數以 LEDGER_ 為前綴（LEDGER_LOG_LEVEL、LEDGER_CONSOLE_SCRIPT 等）；
// 設定檔路徑來自 --config 或 LEDGER_CONFIG。
func Load(args []string) (Config, error) {
	v := viper.New()

	// 預設值
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.development", false)
	v.SetDefault("console.prompt", "ledger> ")
	v.SetDefault("console.script", "")

	fs := pflag.NewFlagSet("ledger", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgFile := fs.String("config", "", "path to a TOML/YAML/JSON config file")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-encoding", "json", "log encoding (json or console)")
	fs.Bool("log-development", false, "use zap development settings")
	fs.String("prompt", "ledger> ", "interactive prompt")
	fs.String("script", "", "read commands from this file instead of stdin")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	for key, flag := range map[string]string{
		"log.level":       "log-level",
		"log.encoding":    "log-encoding",
		"log.development": "log-development",
		"console.prompt":  "prompt",
		"console.script":  "script",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	// 位置參數視為腳本路徑：ledger commands.txt
	if fs.NArg() > 0 {
		v.Set("console.script", fs.Arg(0))
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := *cfgFile
	if path == "" {
		path = os.Getenv("LEDGER_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return errors.New("log.encoding: must be json or console")
	}
	return nil
}

/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/josephgoksu/tasklist/internal/config"
	"github.com/josephgoksu/tasklist/types"
	"github.com/spf13/viper"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single instance of Validate, it caches struct info
var validate = types.NewValidator()

// validateAppConfig checks the unmarshalled config and reports the first
// offending key in config-file terms.
func validateAppConfig(cfg *types.AppConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	e := verrs[0]
	keyPath := configKey(e.Namespace())
	if e.Param() != "" {
		return fmt.Errorf("config %s: failed %q (%s), got %q", keyPath, e.Tag(), e.Param(), fmt.Sprint(e.Value()))
	}
	return fmt.Errorf("config %s: failed %q", keyPath, e.Tag())
}

// configKey turns "AppConfig.Storage.WriteTimeoutSeconds" into
// "storage.writeTimeoutSeconds".
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		switch p {
		case "DSN", "UI":
			parts[i] = strings.ToLower(p)
		case "APIKey":
			parts[i] = "apiKey"
		default:
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

// InitConfig loads .env, the config file and TASKLIST_* environment
// variables into GlobalAppConfig and validates the result.
func InitConfig() error {
	// A missing .env is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(config.EnvPrefix) // e.g., TASKLIST_STORAGE_DRIVER
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		// Project config (./.tasklist/.tasklist.yaml) wins over global ones.
		if info, err := os.Stat(config.LocalDir); err == nil && info.IsDir() {
			viper.AddConfigPath(config.LocalDir)
		}
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(config.ConfigName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err == nil {
		LogError("using config file "+viper.ConfigFileUsed(), nil)
	} else {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			LogError("no config file found, using defaults and environment", nil)
		case cfgFileFlag != "" && errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("config file %s not found", cfgFileFlag)
		default:
			return fmt.Errorf("read config file %s: %w", viper.ConfigFileUsed(), err)
		}
	}

	config.SetDefaults()

	GlobalAppConfig = types.AppConfig{}
	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	// storage.dir depends on the working directory, so it is resolved here
	// rather than registered as a default.
	if GlobalAppConfig.Storage.Dir == "" {
		GlobalAppConfig.Storage.Dir = config.DataDir()
	}
	if GlobalAppConfig.Storage.Key == "" {
		GlobalAppConfig.Storage.Key = config.DefaultStorageKey
	}

	return validateAppConfig(&GlobalAppConfig)
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}

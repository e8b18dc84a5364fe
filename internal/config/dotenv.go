package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileAccount holds credentials read from a .env file. Either field may be empty.
type EnvFileAccount struct {
	Token        string
	DomainPrefix string
}

// ReadEnvFile reads LIGHTSPEED_TOKEN and LIGHTSPEED_DOMAIN_PREFIX from path
// without touching the process environment.
func ReadEnvFile(path string) (EnvFileAccount, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return EnvFileAccount{}, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return EnvFileAccount{
		Token:        strings.TrimSpace(values[EnvToken]),
		DomainPrefix: strings.TrimSpace(values[EnvDomainPrefix]),
	}, nil
}

// LoadDotEnv loads path into the process environment. Variables that are
// already set win. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

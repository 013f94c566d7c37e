package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	envRefreshToken = "SPOT_REFRESH_TOKEN"
	envClientID     = "SPOT_CLIENT_ID"
	envClientSecret = "SPOT_CLIENT_SECRET"
)

var ErrEnvFileMissing = errors.New("could not read environment file (.env), please create if missing")

// Secrets is loaded once per process and never mutated afterwards.
type Secrets struct {
	RefreshToken string
	ClientID     string
	ClientSecret string
}

func LoadSecrets(envFile string) (*Secrets, error) {
	env, err := godotenv.Read(envFile)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrEnvFileMissing
		}
		return nil, fmt.Errorf("failed to parse environment file %q: %v", envFile, err)
	}

	s := Secrets{
		RefreshToken: env[envRefreshToken],
		ClientID:     env[envClientID],
		ClientSecret: env[envClientSecret],
	}
	if err := s.validate(); nil != err {
		return nil, fmt.Errorf("environment file %q: %v", envFile, err)
	}
	return &s, nil
}

func (s Secrets) validate() error {
	switch {
	case s.RefreshToken == "":
		return fmt.Errorf("%s is empty", envRefreshToken)
	case s.ClientID == "":
		return fmt.Errorf("%s is empty", envClientID)
	case s.ClientSecret == "":
		return fmt.Errorf("%s is empty", envClientSecret)
	default:
		return nil
	}
}

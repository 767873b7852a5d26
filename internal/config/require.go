package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}
	if c.ESURL != "" && strings.TrimSpace(c.ESIndex) == "" {
		errs = append(errs, errors.New("ES_INDEX is empty while ES_URL is set"))
	}
	return errors.Join(errs...)
}

func MustValidate(c Config) {
	if err := c.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// loopbackHosts are the only hosts the inference endpoint may point at.
var loopbackHosts = []string{"127.0.0.1", "localhost"}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("loopback", validateLoopback)
	return v
}

// validateLoopback accepts http(s) URLs whose host is a loopback name.
func validateLoopback(fl validator.FieldLevel) bool {
	return IsLoopbackURL(fl.Field().String())
}

// IsLoopbackURL reports whether raw is an http or https URL pointing at
// 127.0.0.1 or localhost.
func IsLoopbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range loopbackHosts {
		if host == h {
			return true
		}
	}
	return false
}

// Validate checks the whole configuration and describes every violated rule.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.StructNamespace() {
	case "Config.Telegram.Token":
		return KeyTelegramToken + " is required"
	case "Config.Telegram.Whitelist":
		return KeyUserWhitelist + " must contain at least one numeric user id"
	case "Config.LMStudio.URL":
		if fe.Tag() == "loopback" {
			return fmt.Sprintf("%s must be an http(s) URL on 127.0.0.1 or localhost, got %q", KeyLMStudioURL, fe.Value())
		}
		return KeyLMStudioURL + " is required"
	}
	return fmt.Sprintf("%s failed %q (value %v)", fe.StructNamespace(), fe.Tag(), fe.Value())
}

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator names fields by their koanf key, so errors read the way the
// setting is written in yaml.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		return name
	})
	return v
}

// Validate reports every problem at once; the process must not start with
// invalid configuration. Besides the struct tags it checks that the token
// lifetime parses.
func (c *Config) Validate() error {
	var problems []string
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}
	// An empty value is already reported as required.
	if c.JWT.AccessTokenExpirationMinutes != "" {
		if _, err := c.JWT.AccessTokenTTL(); err != nil {
			problems = append(problems, fmt.Sprintf("%v (env %s)", err, envName("jwt.access_token_expiration_minutes")))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
}

func describe(fe validator.FieldError) string {
	key := settingKey(fe.Namespace())

	var rule string
	switch fe.Tag() {
	case "required":
		rule = "is required"
	case "required_if":
		field, value, _ := strings.Cut(fe.Param(), " ")
		rule = fmt.Sprintf("is required when %s is %s", siblingKey(key, field), value)
	case "min":
		rule = "must be at least " + fe.Param()
	case "max":
		rule = "must be at most " + fe.Param()
	case "oneof":
		rule = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		rule = "failed the " + fe.Tag() + " rule"
	}
	return fmt.Sprintf("%s %s (env %s)", key, rule, envName(key))
}

// settingKey drops the root type from "Config.jwt.key".
func settingKey(namespace string) string {
	_, key, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}
	return key
}

// siblingKey resolves a required_if field name against the key's section:
// ("log.file.path", "Enabled") -> "log.file.enabled".
func siblingKey(key, field string) string {
	i := strings.LastIndex(key, ".")
	if i < 0 {
		return strings.ToLower(field)
	}
	return key[:i+1] + strings.ToLower(field)
}

// envName is the inverse of envKey: "db.max_open_conns" -> APP_DB__MAX_OPEN_CONNS.
func envName(key string) string {
	return "APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

package config

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dshills/relay/internal/relay/pattern"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// fieldPaths maps validator namespaces to setting paths.
var fieldPaths = map[string]string{
	"Config.Log.Level":              "log.level",
	"Config.Log.Format":             "log.format",
	"Config.Relay.DefaultChannel":   "relay.default_channel",
	"Config.Relay.DefaultEventType": "relay.default_event_type",
	"Config.Relay.HandlerTimeout":   "relay.handler_timeout",
}

// Validate checks the configuration. Every failure matches
// ErrInvalidConfig; the first one found is returned.
func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			path, ok := fieldPaths[fe.Namespace()]
			if !ok {
				path = strings.ToLower(fe.Namespace())
			}
			return &FieldError{Path: path, Value: fe.Value(), Message: "failed " + fe.Tag() + " rule"}
		}
		return err
	}

	// Defaults must be usable as binding names.
	names := []struct {
		path, field, value string
	}{
		{"relay.default_channel", "channel", c.Relay.DefaultChannel},
		{"relay.default_event_type", "event type", c.Relay.DefaultEventType},
	}
	for _, n := range names {
		if err := pattern.ValidateName(n.field, n.value, c.Relay.ForbiddenCharacters); err != nil {
			return &FieldError{Path: n.path, Value: n.value, Message: err.Error()}
		}
	}

	return nil
}

package runtimeconfig

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func documentRules() validation.MapRule {
	return validation.Map(
		validation.Key(KeyPrimary, validation.Required, validation.By(nonEmptyString)),
		validation.Key(KeySecondary, validation.Required, validation.By(nonEmptyString)),
	).AllowExtraKeys()
}

func validateDocument(doc map[string]any) error {
	err := validation.Validate(doc, documentRules())
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, key := range []string{KeyPrimary, KeySecondary} {
			if fieldErr, ok := errs[key]; ok {
				return &ValidationError{Field: key, Reason: fieldErr.Error()}
			}
		}
	}

	return &ValidationError{Reason: err.Error()}
}

func nonEmptyString(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if s == "" {
		return validation.NewError("validation_empty_url", "must not be empty")
	}
	return nil
}

// fromDocument copies the string values out of a decoded document.
// Keys holding anything other than a string are left empty.
func fromDocument(doc map[string]any) Configuration {
	str := func(key string) string {
		s, _ := doc[key].(string)
		return s
	}

	return Configuration{
		PrimaryEndpoint:   str(KeyPrimary),
		SecondaryEndpoint: str(KeySecondary),
		EnvironmentLabel:  str(KeyEnvironment),
	}
}

// requireEndpoints applies the document rules to an already decoded
// configuration, such as an override that was taken as served.
func requireEndpoints(cfg Configuration) error {
	return validateDocument(map[string]any{
		KeyPrimary:   cfg.PrimaryEndpoint,
		KeySecondary: cfg.SecondaryEndpoint,
	})
}

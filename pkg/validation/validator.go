package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/cipher/pkg/friendcode"
)

// Tags registered by New for the friend code formats.
const (
	TagPokemonGo     = "pogo_code"
	TagPokemonPocket = "pocket_code"
	TagSwitch        = "switch_code"
)

var codeTags = map[string]friendcode.Kind{
	TagPokemonGo:     friendcode.PokemonGo,
	TagPokemonPocket: friendcode.PokemonPocket,
	TagSwitch:        friendcode.Switch,
}

// New builds a validator with the friend code tags and the webimage alias.
// - Uses json tag names in errors.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, kind := range codeTags {
		kind := kind
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			_, err := friendcode.Parse(kind, fl.Field().String())
			return err == nil
		})
	}
	v.RegisterAlias("webimage", "url,startswith=http")
	return v
}

// Messages flattens a validation error into human readable lines.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, Message(fe))
		}
		return out
	}
	return []string{err.Error()}
}

// Message renders one field error. Friend code failures reuse the parser's
// wording so users see the offending input.
func Message(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	if kind, ok := codeTags[tag]; ok {
		return (&friendcode.InvalidError{Kind: kind, Input: fmt.Sprint(fe.Value())}).Error()
	}

	switch tag {
	case "required":
		return "is required"
	case "url", "webimage":
		return "must be a valid URL"
	case "startswith":
		return "must start with '" + param + "'"
	case "max":
		return "must be at most " + param + " characters long"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

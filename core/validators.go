package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// custom validation tags & texts
var (
	usernameTag   = "alphanum_"
	usernameText  = "only alphanumeric characters and underscores are allowed"
	usernameRegex = regexp.MustCompile(`^\w+$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"

	// enum fields (ticket priority, ticket status) spell out what they accept
	oneOfTag  = "oneof"
	oneOfText = "must be one of: {0}"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// error keys use the JSON field names the client sends, not Go names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(usernameTag, usernameValidation)
	registerTranslation(validate, translator, usernameTag, usernameText, false, nil)

	registerTranslation(validate, translator, requiredTag, requiredText, true, nil)
	registerTranslation(validate, translator, requiredWithTag, requiredText, true, nil)

	registerTranslation(validate, translator, oneOfTag, oneOfText, true, func(fe validator.FieldError) string {
		return strings.ReplaceAll(fe.Param(), " ", ", ")
	})
}

// registerTranslation binds text to tag; param, when set, supplies the
// translation argument instead of the field name.
func registerTranslation(
	validate *validator.Validate,
	translator ut.Translator,
	tag, text string,
	override bool,
	param func(validator.FieldError) string,
) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			arg := fe.Field()
			if param != nil {
				arg = param(fe)
			}
			s, _ := t.T(tag, arg)
			return s
		},
	)
}

// Custom Global Validators

// usernameValidation allows alphanumeric characters and underscores only;
// unlike free-form names, usernames carry no spaces.
func usernameValidation(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

// Package bind decodes request payloads into typed structs and validates them
package bind

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "newsletter/internal/platform/errors"
	"newsletter/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/schema"
)

// FieldError aliases validator.FieldError
type FieldError = validator.FieldError

// ValidatorSvc holds a singleton validator and translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc

	formOnce sync.Once
	formDec  *schema.Decoder
)

// maxFormBytes bounds urlencoded bodies
const maxFormBytes = 64 << 10

// Get returns the validator singleton with english translations and form tag names
func Get() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// messages use the wire name of the field
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"form", "json"} {
				tag := fld.Tag.Get(key)
				if idx := strings.Index(tag, ","); idx >= 0 {
					tag = tag[:idx]
				}
				if tag != "" && tag != "-" {
					return tag
				}
			}
			return fld.Name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerShortMax(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

func decoder() *schema.Decoder {
	formOnce.Do(func() {
		formDec = schema.NewDecoder()
		formDec.SetAliasTag("form")
		formDec.IgnoreUnknownKeys(true)
	})
	return formDec
}

// ParseForm decodes an urlencoded body into T, validates it, and maps failures to project errors
// a missing or unparsable field is a validation error naming that field
func ParseForm[T any](r *http.Request) (T, error) {
	var zero T

	r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return zero, perr.Validationf("invalid form body")
	}

	var dst T
	if err := decoder().Decode(&dst, r.PostForm); err != nil {
		logger.C(r.Context()).Debug().Err(err).Msg("form decode failed")
		return zero, perr.Validationf("invalid form body")
	}
	if err := Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// Query decodes the URL query into T and validates it
func Query[T any](r *http.Request) (T, error) {
	var dst T
	if err := decoder().Decode(&dst, r.URL.Query()); err != nil {
		logger.C(r.Context()).Debug().Err(err).Msg("query decode failed")
		var zero T
		return zero, perr.Validationf("invalid query")
	}
	if err := Struct(dst); err != nil {
		var zero T
		return zero, err
	}
	return dst, nil
}

// Struct runs the validator over v and returns a field scoped validation error
func Struct(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Internalf("validation error")
	}
	field, msg := ValidationFieldAndMessage(err)
	return perr.WithField(perr.Validationf("%s", msg), field)
}

// ValidationFieldAndMessage returns the first field and translated message
func ValidationFieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field(), fe.Translate(Get().Translator)
	}
	return "", err.Error()
}

func registerShortMax(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("max", trans,
		func(ut ut.Translator) error {
			return ut.Add("max", "{0} must be at most {1}", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("max", fe.Field(), fe.Param())
			return msg
		},
	)
}

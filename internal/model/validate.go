package model

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	requiredTag  = "required"
	requiredText = "this field is required"

	minTag          = "min"
	minSectionsText = "add at least one section before saving"

	validatorOnce sync.Once
	validate      *validator.Validate
	translator    ut.Translator
)

// FieldError describes a validation failure on one field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned when a publication fails the checks that run
// before save or publish.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func (err *ValidationError) Error() string {
	if len(err.Fields) == 0 {
		if err.Err == nil {
			return "validation failed"
		}
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (err *ValidationError) Unwrap() error {
	return err.Err
}

// Map returns field messages keyed by field name.
func (err *ValidationError) Map() map[string]string {
	out := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		out[f.Field] = f.Error
	}
	return out
}

func initValidator() {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")

	validate = validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerTranslation(requiredTag, requiredText)
	registerTranslation(minTag, minSectionsText)
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Validate checks that a publication may be saved or published: the title
// must be non-blank and there must be at least one section.
func Validate(p Publication) error {
	validatorOnce.Do(initValidator)

	subject := p
	subject.Title = strings.TrimSpace(p.Title)

	var fields []FieldError
	err := validate.Struct(subject)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Error: fe.Translate(translator)})
		}
	}
	for _, s := range p.Sections {
		for _, b := range s.Children {
			if b.Kind != BlockKindMenu || b.Menu == nil {
				continue
			}
			for _, item := range b.Menu.Items {
				if strings.TrimSpace(item.Name) == "" {
					fields = append(fields, FieldError{Field: "sections." + s.ID + ".menu", Error: "menu items need a name"})
					break
				}
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &ValidationError{Err: err, Fields: fields}
}

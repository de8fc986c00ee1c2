package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ersonp/kinship/internal/domain/entities"
)

var registerOnce sync.Once

// registerValidators adds the "relation_kind" tag to gin's validator.
func registerValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(wireName)
		err = v.RegisterValidation("relation_kind", validKind)
	})
	return err
}

func validKind(fl validator.FieldLevel) bool {
	_, err := entities.ParseKind(fl.Field().String())
	return err == nil
}

// describeBindError turns validator output into a short message.
func describeBindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fieldName(fe)))
		case "relation_kind":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fieldName(fe), strings.Join(entities.KindNames(), ", ")))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fieldName(fe), fe.Tag(), fe.Param()))
		}
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}

// wireName reports fields by their json or form name.
func wireName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

func fieldName(fe validator.FieldError) string {
	return fe.Field()
}

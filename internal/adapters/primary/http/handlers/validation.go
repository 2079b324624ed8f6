package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validationOnce sync.Once

// registerValidation reports json field names in errors and adds the
// duration rule.
func registerValidation() {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		if err := v.RegisterValidation("duration", validDuration); err != nil {
			panic(fmt.Sprintf("register duration validation: %v", err))
		}
	})
}

func validDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d >= 0
}

// bindJSON binds the body into req. On failure it writes a 422 with the
// messages keyed by field and returns false.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	fields := map[string][]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := fieldPath(fe)
			fields[field] = append(fields[field], validationMessage(field, fe))
		}
	} else {
		fields["body"] = []string{"The request body is not valid JSON."}
	}

	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": firstMessage(fields),
		"errors":  fields,
	})
	return false
}

// fieldPath drops the struct name from the namespace: CreateModRequest.name
// becomes name, dependencies[0].mod_id stays nested.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(field string, fe validator.FieldError) string {
	name := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", name)
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("The %s field must not have more than %s items.", name, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", name, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", strings.TrimSuffix(name, " confirmation"))
	case "duration":
		return fmt.Sprintf("The %s field must be a duration such as 72h.", name)
	}
	return fmt.Sprintf("The %s field is invalid.", name)
}

// firstMessage picks the message of the alphabetically first field so the
// summary is stable.
func firstMessage(fields map[string][]string) string {
	first := ""
	for field := range fields {
		if first == "" || field < first {
			first = field
		}
	}
	msg := fields[first][0]
	if extra := len(fields) - 1; extra > 0 {
		msg = fmt.Sprintf("%s (and %d more error%s)", msg, extra, plural(extra))
	}
	return msg
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

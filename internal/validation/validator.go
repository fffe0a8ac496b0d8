// Package validation rejects malformed numeric input before it reaches the
// location engine. It wraps a singleton go-playground validator with a custom
// "finite" tag and geometry checks for geofence regions.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one field that failed validation
type FieldError struct {
	Field   string      `json:"field"`
	Tag     string      `json:"tag"`
	Param   string      `json:"param,omitempty"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// ValidationError is returned for malformed input (NaN or out-of-range
// coordinates, negative accuracy, broken geofence geometry)
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// IsValidationError reports whether err is or wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON field names so API errors match the request body
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		// min/max let +Inf through on one side, so reject non-finite values explicitly
		_ = validate.RegisterValidation("finite", isFinite)
	})

	return validate
}

func isFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}

// ValidateStruct validates s with the singleton validator.
// Returns nil or a *ValidationError.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &ValidationError{Fields: []FieldError{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   safeValue(fe.Value()),
			Message: translateError(fe),
		}
	}

	return &ValidationError{Fields: fields}
}

// ValidateCoordinate checks latitude/longitude ranges and rejects NaN/Inf
func ValidateCoordinate(c models.Coordinate) error {
	return ValidateStruct(c)
}

// ValidateSample checks a location sample before it is scored
func ValidateSample(sample models.LocationSample) error {
	return ValidateStruct(sample)
}

// ValidateClockRequest checks the body of a clock-in/clock-out call
func ValidateClockRequest(req models.ClockRequest) error {
	return ValidateStruct(req)
}

// ValidateRegion checks field ranges and shape geometry of a geofence region
func ValidateRegion(region models.GeofenceRegion) error {
	if err := ValidateStruct(region); err != nil {
		return err
	}

	switch region.Shape {
	case models.ShapeCircle:
		if err := ValidateCoordinate(region.Center); err != nil {
			return err
		}
		if region.RadiusMeters <= 0 {
			return fieldError("radiusMeters", "gt", "0", region.RadiusMeters, "radiusMeters must be greater than 0")
		}
	case models.ShapePolygon:
		if len(region.Vertices) < 3 {
			return fieldError("vertices", "min", "3", len(region.Vertices), "vertices must contain at least 3 points")
		}
		if spatial.PolygonSelfIntersects(region.Vertices) {
			return fieldError("vertices", "simple", "", nil, "vertices must not form a self-intersecting polygon")
		}
	}

	return nil
}

// NewError builds a ValidationError for a single field
func NewError(field, tag, message string) *ValidationError {
	return fieldError(field, tag, "", nil, message)
}

func fieldError(field, tag, param string, value interface{}, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{
		Field:   field,
		Tag:     tag,
		Param:   param,
		Value:   value,
		Message: message,
	}}}
}

// safeValue keeps NaN/Inf out of JSON error bodies
func safeValue(v interface{}) interface{} {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
	case *float64:
		if f != nil && (math.IsNaN(*f) || math.IsInf(*f, 0)) {
			return fmt.Sprint(*f)
		}
	}
	return v
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"finite":   "%s must be a finite number",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()

	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

package core

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// metricIDPattern is the grammar shared with inline #id(value) observations.
var metricIDPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// domainValidate is the validator instance for domain types.
// Initialized in init() with custom validators.
var domainValidate *validator.Validate

func init() {
	domainValidate = validator.New()
	_ = domainValidate.RegisterValidation("metricid", validateMetricID)
}

func validateMetricID(fl validator.FieldLevel) bool {
	return metricIDPattern.MatchString(fl.Field().String())
}

// ValidateMetric checks a metric definition before it is added to a profile.
// The codec itself never calls this: profiles read from text stay permissive.
func ValidateMetric(m Metric) error {
	if err := domainValidate.Struct(m); err != nil {
		return fmt.Errorf("%w: metric %q: %v", ErrInvalidProfile, m.ID, err)
	}
	if err := validateRange(m.Range); err != nil {
		return fmt.Errorf("%w: metric %q range: %v", ErrInvalidProfile, m.ID, err)
	}
	if err := validateRange(m.HealthyRange); err != nil {
		return fmt.Errorf("%w: metric %q healthy range: %v", ErrInvalidProfile, m.ID, err)
	}
	return nil
}

func validateRange(r Range) error {
	if r.Low != nil && r.High != nil && *r.Low > *r.High {
		return fmt.Errorf("low bound %v above high bound %v", *r.Low, *r.High)
	}
	return nil
}

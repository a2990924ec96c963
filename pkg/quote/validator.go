package quote

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/models"
	"github.com/go-playground/validator/v10"
)

// emailPattern accepts local@domain.tld with no whitespace and a single @.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Custom validation tags bound to the closed label sets in models.
var labelTags = map[string][]string{
	"project_type":     models.ProjectTypes,
	"timeline":         models.Timelines,
	"budget_range":     models.BudgetRanges,
	"main_goal":        models.MainGoals,
	"required_feature": models.RequiredFeatures,
	"content_status":   models.ContentStatuses,
}

var fieldLabels = map[string]string{
	"name":                  "Name",
	"email":                 "Email",
	"phone":                 "Phone number",
	"company":               "Company name",
	"companyWebsite":        "Company website",
	"projectType":           "Project type",
	"projectTypeOther":      "Project type details",
	"timeline":              "Timeline",
	"budgetRange":           "Budget range",
	"targetAudience":        "Target audience",
	"mainGoals":             "Main goals",
	"mainGoalsOther":        "Other goals",
	"requiredFeatures":      "Required features",
	"requiredFeaturesOther": "Other features",
	"designPreferences":     "Design preferences",
	"contentStatus":         "Content status",
	"additionalInfo":        "Additional information",
}

// Validator checks quote requests. The same instance backs the HTTP handler
// and the Go client so both sides accept exactly the same shapes.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the quote label sets registered
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so messages match what the submitter sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "basic_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	for tag, labels := range labelTags {
		mustRegister(v, tag, oneOfLabels(labels))
	}

	return &Validator{validate: v}
}

// Validate checks every field of req. It never modifies req, so validating
// the same value twice always gives the same answer.
func (v *Validator) Validate(req models.QuoteRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.NewInternalError(err)
	}

	var missing []string
	fields := make(domain.FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		field := baseField(fe.Field())
		if isMissing(fe) {
			missing = append(missing, field)
		}
		fields = append(fields, models.FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe, field),
		})
	}

	if len(missing) > 0 {
		return domain.NewFieldValidationError("Missing required fields: "+strings.Join(missing, ", "), fields)
	}
	return domain.NewFieldValidationError(fields[0].Message, fields)
}

func messageFor(fe validator.FieldError, field string) string {
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "basic_email":
		return "Invalid email format"
	case "url":
		return label + " must be a valid URL"
	case "unique":
		return label + " must not contain duplicates"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Please select at least %s option(s) for %s", fe.Param(), strings.ToLower(label))
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	}

	if _, isLabelTag := labelTags[fe.Tag()]; isLabelTag {
		return fmt.Sprintf("%s has an unsupported value %q", label, fmt.Sprint(fe.Value()))
	}
	return label + " is invalid"
}

// isMissing reports absent values, counting an empty selection list as absent.
func isMissing(fe validator.FieldError) bool {
	return fe.Tag() == "required" || (fe.Tag() == "min" && fe.Kind() == reflect.Slice)
}

// baseField strips a slice index: "mainGoals[2]" -> "mainGoals".
func baseField(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}

func oneOfLabels(labels []string) validator.Func {
	allowed := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		allowed[l] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("quote: register %s validation: %v", tag, err))
	}
}

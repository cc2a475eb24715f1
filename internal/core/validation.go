package core

import (
	"regexp"
	"strings"
)

// gitCommitPattern matches abbreviated through full git commit hashes.
var gitCommitPattern = regexp.MustCompile(`(?i)^[a-f0-9]{6,40}$`)

// FieldError identifies a single invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult reports the outcome of a form validation. Validation
// never fails with an error; callers inspect Errors and keep the form
// open for correction.
type ValidationResult struct {
	IsValid bool         `json:"isValid"`
	Errors  []FieldError `json:"errors"`
}

func resultFrom(errs []FieldError) ValidationResult {
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateTaskForm checks task-creation input: a non-empty trimmed name
// and description, and a strictly positive point value.
func ValidateTaskForm(name, description string, points int) ValidationResult {
	var errs []FieldError
	if strings.TrimSpace(name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name must not be empty"})
	}
	if strings.TrimSpace(description) == "" {
		errs = append(errs, FieldError{Field: "description", Message: "description must not be empty"})
	}
	if points <= 0 {
		errs = append(errs, FieldError{Field: "points", Message: "points must be a positive integer"})
	}
	return resultFrom(errs)
}

// ValidateCompletionForm checks task-completion input: positive hours,
// a git commit hash of 6 to 40 hex characters, and non-empty comments.
func ValidateCompletionForm(hoursSpent float64, gitCommit, comments string) ValidationResult {
	var errs []FieldError
	if hoursSpent <= 0 {
		errs = append(errs, FieldError{Field: "hoursSpent", Message: "hours spent must be greater than zero"})
	}
	if !gitCommitPattern.MatchString(strings.TrimSpace(gitCommit)) {
		errs = append(errs, FieldError{Field: "gitCommit", Message: "git commit must be 6-40 hexadecimal characters"})
	}
	if strings.TrimSpace(comments) == "" {
		errs = append(errs, FieldError{Field: "comments", Message: "comments must not be empty"})
	}
	return resultFrom(errs)
}

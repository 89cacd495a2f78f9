package declc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lineal-dev/lineal/internal/plan"
	"github.com/lineal-dev/lineal/internal/registry"
)

// Validation error codes (E2xx).
const (
	ErrUnknownTransition = "E201" // transition not preserve/consume/any
	ErrDuplicateOp       = "E202" // duplicate operation name within a type
	ErrBadTracked        = "E203" // tracked position negative or duplicated
	ErrEmptyResult       = "E204" // result type name empty
	ErrBadTypeName       = "E205" // type name not UpperCamelCase
	ErrBadOpName         = "E206" // op name not lowerCamelCase
)

var (
	typeNameRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	opNameRe   = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)
)

// ValidationError is a single schema violation in a declaration.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled declarations against schema rules.
// Returns all errors found rather than failing fast.
func Validate(decls []TypeDecl) []ValidationError {
	var errs []ValidationError
	for _, decl := range decls {
		errs = append(errs, validateTypeDecl(&decl)...)
	}
	return errs
}

func validateTypeDecl(decl *TypeDecl) []ValidationError {
	var errs []ValidationError

	if !typeNameRe.MatchString(decl.Name) {
		errs = append(errs, ValidationError{
			Field:   decl.Name,
			Message: fmt.Sprintf("type name %q must be UpperCamelCase", decl.Name),
			Code:    ErrBadTypeName,
		})
	}

	opNames := make(map[string]bool)
	for i, op := range decl.Ops {
		field := fmt.Sprintf("%s.%s", decl.Name, op.Name)
		if op.Name == "" {
			field = fmt.Sprintf("%s.ops[%d]", decl.Name, i)
		}

		if !opNameRe.MatchString(op.Name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("operation name %q must be lowerCamelCase", op.Name),
				Code:    ErrBadOpName,
			})
		}

		if opNames[op.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate operation name: %q", op.Name),
				Code:    ErrDuplicateOp,
			})
		}
		opNames[op.Name] = true

		if _, err := plan.ParseTransition(op.Transition); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".transition",
				Message: fmt.Sprintf("unknown transition %q (want preserve, consume, or any)", op.Transition),
				Code:    ErrUnknownTransition,
			})
		}

		seen := make(map[int]bool)
		for _, pos := range op.Tracked {
			if pos < 0 {
				errs = append(errs, ValidationError{
					Field:   field + ".tracked",
					Message: fmt.Sprintf("tracked position %d is negative", pos),
					Code:    ErrBadTracked,
				})
				continue
			}
			if seen[pos] {
				errs = append(errs, ValidationError{
					Field:   field + ".tracked",
					Message: fmt.Sprintf("tracked position %d declared twice", pos),
					Code:    ErrBadTracked,
				})
			}
			seen[pos] = true
		}

		if strings.TrimSpace(op.Result) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".result",
				Message: "result type name is required",
				Code:    ErrEmptyResult,
			})
		}
	}

	return errs
}

// Populate registers every declared operation on reg. Declarations must
// already be validated; Populate returns the first registration error.
func Populate(reg *registry.Registry, decls []TypeDecl) error {
	for _, decl := range decls {
		for _, op := range decl.Ops {
			transition, err := plan.ParseTransition(op.Transition)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", decl.Name, op.Name, err)
			}
			tracked := make(map[int]bool, len(op.Tracked))
			for _, pos := range op.Tracked {
				tracked[pos] = true
			}
			meta := plan.OperationMeta{
				Name:       op.Name,
				Tracked:    tracked,
				Transition: transition,
				Result:     op.Result,
			}
			if err := reg.Register(decl.Name, meta); err != nil {
				return fmt.Errorf("%s.%s: %w", decl.Name, op.Name, err)
			}
		}
	}
	return nil
}

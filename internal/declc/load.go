package declc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// Loading error codes (E0xx).
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeScanError   = "E002" // directory scan error
	ErrCodeNoFiles     = "E003" // no CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
)

// LoadError is an error produced while loading declaration files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadResult contains the declarations loaded from a directory.
type LoadResult struct {
	Types     []TypeDecl
	CUEValue  cue.Value // the raw CUE value for additional processing
	FileCount int       // number of CUE files found
}

// Load reads all CUE files under dir and extracts the registry
// declarations. Extraction errors are collected rather than stopping at
// the first, so a caller can report every problem in one run.
func Load(dir string) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("declarations directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing declarations directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	registryVal := value.LookupPath(cue.ParsePath("registry"))
	if !registryVal.Exists() {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no registry struct found in declarations"})
		return result, errs
	}

	iter, iterErr := registryVal.Fields()
	if iterErr != nil {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating registry: %v", iterErr)})
		return result, errs
	}
	for iter.Next() {
		decl, declErr := compileTypeDecl(iter.Label(), iter.Value())
		if declErr != nil {
			errs = append(errs, declErr)
			continue
		}
		result.Types = append(result.Types, *decl)
	}

	return result, errs
}

// compileTypeDecl parses the CUE struct for one receiver type. Each
// field of the struct is an operation declaration.
func compileTypeDecl(name string, v cue.Value) (*TypeDecl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decl := &TypeDecl{Name: name}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		op, opErr := compileOpDecl(iter.Label(), iter.Value())
		if opErr != nil {
			return nil, opErr
		}
		decl.Ops = append(decl.Ops, *op)
	}

	return decl, nil
}

// compileOpDecl parses a single operation declaration.
func compileOpDecl(name string, v cue.Value) (*OpDecl, error) {
	op := &OpDecl{Name: name}

	trackedVal := v.LookupPath(cue.ParsePath("tracked"))
	if trackedVal.Exists() {
		list, err := trackedVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for list.Next() {
			n, err := list.Value().Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			op.Tracked = append(op.Tracked, int(n))
		}
		sort.Ints(op.Tracked)
	}

	transitionVal := v.LookupPath(cue.ParsePath("transition"))
	if !transitionVal.Exists() {
		return nil, &LoadError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("operation %q: transition is required", name),
			Pos:     v.Pos(),
		}
	}
	transition, err := transitionVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	op.Transition = transition

	resultVal := v.LookupPath(cue.ParsePath("result"))
	if !resultVal.Exists() {
		return nil, &LoadError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("operation %q: result is required", name),
			Pos:     v.Pos(),
		}
	}
	result, err := resultVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	op.Result = result

	return op, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

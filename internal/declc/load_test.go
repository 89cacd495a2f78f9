package declc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadValidDeclarations(t *testing.T) {
	result, errs := Load("testdata/valid")
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.FileCount)
	require.Len(t, result.Types, 2)

	var token, res *TypeDecl
	for i := range result.Types {
		switch result.Types[i].Name {
		case "Token":
			token = &result.Types[i]
		case "Res":
			res = &result.Types[i]
		}
	}
	require.NotNil(t, token)
	require.NotNil(t, res)

	require.Len(t, token.Ops, 3)
	merge := findOp(t, token, "merge")
	assert.Equal(t, []int{0, 1}, merge.Tracked)
	assert.Equal(t, "preserve", merge.Transition)
	assert.Equal(t, "Token", merge.Result)

	note := findOp(t, token, "note")
	assert.Empty(t, note.Tracked)

	finalize := findOp(t, res, "finalize")
	assert.Equal(t, "consume", finalize.Transition)
	assert.Equal(t, "Receipt", finalize.Result)

	peek := findOp(t, res, "peek")
	assert.Equal(t, "any", peek.Transition)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, errs := Load("testdata/does-not-exist")
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadNoRegistryStruct(t *testing.T) {
	result, errs := Load("testdata/missing")
	require.Len(t, errs, 1)
	assert.Empty(t, result.Types)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeGeneric, loadErr.Code)
}

func TestLoadMissingTransition(t *testing.T) {
	result, errs := Load("testdata/incomplete")
	require.Len(t, errs, 1)
	assert.Empty(t, result.Types)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Contains(t, loadErr.Message, "transition is required")
}

func TestFindCUEFiles(t *testing.T) {
	files, err := FindCUEFiles("testdata/valid")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "tokens.cue")
}

func TestLoadErrorFormatting(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in x"}
	assert.Equal(t, "E003: no CUE files found in x", err.Error())
}

func findOp(t *testing.T, decl *TypeDecl, name string) *OpDecl {
	t.Helper()
	for i := range decl.Ops {
		if decl.Ops[i].Name == name {
			return &decl.Ops[i]
		}
	}
	t.Fatalf("operation %q not found on %s", name, decl.Name)
	return nil
}

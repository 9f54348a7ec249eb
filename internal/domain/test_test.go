package domain

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "tcrun.dev/pkg/tcrun/internal/model"
)

func TestNewTest(t *testing.T) {
	tests := []struct {
		name     string
		def      m.TestcaseDefinition
		wantKind m.TestKind
		wantErr  m.ErrorKind
	}{
		{name: "default kind is io", def: m.TestcaseDefinition{}, wantKind: m.KindIO},
		{name: "io", def: m.TestcaseDefinition{Kind: m.KindIO}, wantKind: m.KindIO},
		{name: "ordered", def: m.TestcaseDefinition{Kind: m.KindOrdIO, IoFile: "a.io"}, wantKind: m.KindOrdIO},
		{name: "ordered without script", def: m.TestcaseDefinition{Kind: m.KindOrdIO}, wantErr: m.InvalidTestcase},
		{name: "bad prompt", def: m.TestcaseDefinition{Kind: m.KindOrdIO, IoFile: "a.io", IoPrompt: "("}, wantErr: m.InvalidTestcase},
		{name: "unknown kind", def: m.TestcaseDefinition{Kind: "fuzz"}, wantErr: m.InvalidTestcase},
		{name: "bad diff mode", def: m.TestcaseDefinition{AddOutFile: "o", AddExpFile: "e", AddDiffMode: "hex"}, wantErr: m.InvalidTestcase},
		{name: "bad env", def: m.TestcaseDefinition{Env: []string{"=x"}}, wantErr: m.InvalidTestcase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := shellEnvironment(t, nil)
			tt.def.Name = tt.name

			test, err := NewTest(tt.def, 4, env)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, m.KindOf(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, test.Kind())
			assert.Equal(t, 4, test.Meta().Number)
			assert.Equal(t, tt.name, test.Meta().Name)
		})
	}
}

func TestNewTest_ResolvesPaths(t *testing.T) {
	env := shellEnvironment(t, nil)

	test, err := NewTest(m.TestcaseDefinition{
		Name:       "paths",
		InFile:     "in.txt",
		ExpFile:    "/abs/out.txt",
		AddOutFile: "result.bin",
		AddExpFile: "result.expected",
		Timeout:    1.5,
	}, 1, env)
	require.NoError(t, err)

	io, ok := test.(*ioTest)
	require.True(t, ok)

	assert.Equal(t, m.Path(filepath.Join(string(env.Project.TestDir), "in.txt")), io.spec.InFile)
	assert.Equal(t, m.Path("/abs/out.txt"), io.spec.ExpFile)

	meta := test.Meta()
	require.NotNil(t, meta.AuxDiff)
	assert.Equal(t, m.Path(filepath.Join(string(env.Project.BuildDir), "result.bin")), meta.AuxDiff.OutFile)
	assert.Equal(t, m.Path(filepath.Join(string(env.Project.TestDir), "result.expected")), meta.AuxDiff.ExpFile)
	assert.Equal(t, m.DiffText, meta.AuxDiff.Mode)
	assert.Equal(t, 1500*time.Millisecond, meta.Timeout)
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, time.Second, remaining(t.Context(), time.Second))
}

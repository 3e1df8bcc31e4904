package compile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/surface"
)

func TestCompileThroughColoringProducesACompleteAllocationWithNoSpillsOnATinyProgram(t *testing.T) {
	src := `(entry main x (prim + (var x) (num 1)))`
	prog, errs := surface.Parse("t.snake", src)
	assert.Empty(t, errs)

	var log bytes.Buffer
	cfg := Config{CopyPropagation: true, AssertionRemoval: true, DeadCodeElimination: true, Verbosity: Mouthful, Log: &log}
	result := Compile(prog, cfg, StageColoring)

	assert.NotNil(t, result.Program)
	assert.NotNil(t, result.Graph)
	assert.NotEmpty(t, result.Order)
	assert.NotNil(t, result.Allocation)
	assert.Equal(t, 0, result.Allocation.SpillCount())
	assert.NotEmpty(t, log.String(), "Mouthful verbosity with a non-nil Log must produce progress output")
}

func TestCompileStoppingAtSSASkipsEveryLaterStage(t *testing.T) {
	src := `(entry main x (var x))`
	prog, errs := surface.Parse("t.snake", src)
	assert.Empty(t, errs)

	result := Compile(prog, Config{}, StageSSA)
	assert.NotNil(t, result.Program)
	assert.Nil(t, result.Graph)
	assert.Nil(t, result.Allocation)
}

func TestCompileStoppingAtGraphOmitsOrderAndAllocation(t *testing.T) {
	src := `(entry main x (if (prim == (var x) (num 0)) (num 1) (num 2)))`
	prog, errs := surface.Parse("t.snake", src)
	assert.Empty(t, errs)

	result := Compile(prog, Config{}, StageGraph)
	assert.NotNil(t, result.Graph)
	assert.Nil(t, result.Order)
	assert.Nil(t, result.Allocation)
}

func TestCompileWithAllOptimizationsDisabledStillReachesColoring(t *testing.T) {
	src := `(entry main x (prim add1 (var x)))`
	prog, errs := surface.Parse("t.snake", src)
	assert.Empty(t, errs)

	result := Compile(prog, Config{}, StageColoring)
	assert.NotNil(t, result.Allocation)
}

func TestParseRegisterSpecAllMinusOneExcludesExactlyThatRegister(t *testing.T) {
	regs, err := ParseRegisterSpec("all,-rax")
	assert.NoError(t, err)
	assert.NotContains(t, regs, "rax")
	assert.Len(t, regs, 11)
}

func TestParseRegisterSpecNonePlusOneSelectsExactlyThatRegister(t *testing.T) {
	regs, err := ParseRegisterSpec("none,+rbx")
	assert.NoError(t, err)
	assert.Equal(t, []string{"rbx"}, regs)
}

func TestParseRegisterSpecRejectsUnknownBaseSet(t *testing.T) {
	_, err := ParseRegisterSpec("bogus")
	assert.Error(t, err)
}

func TestParseRegisterSpecRejectsUnknownRegisterModifier(t *testing.T) {
	_, err := ParseRegisterSpec("none,+zzz")
	assert.Error(t, err)
}

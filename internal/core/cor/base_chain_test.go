// Copyright 2025, Clipwise, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// appendCommand appends its suffix to the string found at its input param and
// writes the result to its output param.
type appendCommand struct {
	BaseCommand
	suffix string
}

func newAppendCommand(name string, suffix string) *appendCommand {
	return &appendCommand{BaseCommand: *NewBaseCommand(name), suffix: suffix}
}

func (c *appendCommand) Execute(chCtx Context) {
	in, ok := chCtx.Get(c.GetInputParam()).(string)
	if !ok {
		chCtx.AddError(c.GetName(), errors.New("input is not a string"))
		return
	}
	chCtx.Add(c.GetOutputParam(), in+c.suffix)
}

// failingCommand always records an error.
type failingCommand struct {
	BaseCommand
}

func newFailingCommand(name string) *failingCommand {
	return &failingCommand{BaseCommand: *NewBaseCommand(name)}
}

func (c *failingCommand) Execute(chCtx Context) {
	chCtx.AddError(c.GetName(), fmt.Errorf("%s failed", c.GetName()))
}

func newTestContext() Context {
	chCtx := NewBaseContext()
	chCtx.SetContext(context.Background())
	return chCtx
}

func TestChainPipesOutputToNextInput(t *testing.T) {
	chain := NewBaseChain("pipe-test")
	chain.AddCommand(newAppendCommand("first", "-a"))
	chain.AddCommand(newAppendCommand("second", "-b"))

	chCtx := newTestContext()
	chCtx.Add(CtxIn, "start")

	chain.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	// The final output is flip-flopped into the input slot.
	assert.Equal(t, "start-a-b", chCtx.Get(CtxIn))
	assert.Nil(t, chCtx.Get(CtxOut))
}

func TestChainStopsOnFirstFailure(t *testing.T) {
	chain := NewBaseChain("stop-test")
	chain.AddCommand(newFailingCommand("boom"))
	chain.AddCommand(newAppendCommand("after", "-never"))

	chCtx := newTestContext()
	chCtx.Add(CtxIn, "start")

	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.Contains(t, chCtx.GetErrors(), "boom")
	// The flip-flop consumed the input and the failed command produced no
	// output, so nothing is left in the pipe.
	assert.Nil(t, chCtx.Get(CtxIn))
	assert.Nil(t, chCtx.Get(CtxOut))
}

func TestChainContinueOnFailure(t *testing.T) {
	chain := NewBaseChain("continue-test")
	chain.ContinueOnFailure(true)
	chain.AddCommand(newFailingCommand("boom"))
	chain.AddCommand(newAppendCommand("after", "-ran"))

	chCtx := newTestContext()
	chCtx.Add(CtxIn, "start")

	chain.Execute(chCtx)

	// The chain keeps going past the failure, but the failed command
	// produced no output, so the next command has no input: it is skipped
	// by its readiness check instead of running on stale data.
	assert.True(t, chCtx.HasErrors())
	assert.Contains(t, chCtx.GetErrors(), "boom")
	assert.NotContains(t, chCtx.GetErrors(), "after")
	assert.Nil(t, chCtx.Get(CtxIn))
}

func TestChainSkipsCommandWithMissingInput(t *testing.T) {
	chain := NewBaseChain("skip-test")
	chain.AddCommand(newAppendCommand("needs-input", "-x"))

	chCtx := newTestContext()
	// No CtxIn seeded: IsExecutable fails and the command is skipped.
	chain.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Nil(t, chCtx.Get(CtxIn))
}

func TestContextTempFileCleanup(t *testing.T) {
	chCtx := NewBaseContext()
	chCtx.AddTempFile(t.TempDir() + "/does-not-exist.tmp")
	assert.Equal(t, 1, len(chCtx.GetTempFiles()))
	// Close tolerates files that are already gone.
	chCtx.Close()
}

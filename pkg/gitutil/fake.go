package gitutil

import (
	"context"
	"strings"
	"sync"
)

// FakeRunner is an in-memory Runner for tests. Responses are keyed by the
// space-joined arguments; unknown commands succeed with empty output.
type FakeRunner struct {
	mu      sync.Mutex
	Outputs map[string]string
	Errors  map[string]error
	Calls   [][]string
}

// NewFakeRunner returns an empty FakeRunner
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs: map[string]string{},
		Errors:  map[string]error{},
	}
}

// Run records the call and replays the configured response
func (f *FakeRunner) Run(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, args)
	key := strings.Join(args, " ")
	if err, ok := f.Errors[key]; ok {
		return "", err
	}
	return f.Outputs[key], nil
}

// Commands returns the recorded calls as space-joined strings
func (f *FakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	cmds := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		cmds = append(cmds, strings.Join(c, " "))
	}
	return cmds
}

package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/eventmgmt/eventctl/internal/cli/config"
	"github.com/eventmgmt/eventctl/internal/cli/storage"
	appconfig "github.com/eventmgmt/eventctl/internal/config"
	"github.com/eventmgmt/eventctl/internal/testhelpers"
)

// testEnv bundles a stub API with the options that point commands at it
type testEnv struct {
	api   *testhelpers.StubAPI
	store *storage.Memory
	out   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		api:   testhelpers.NewStubAPI(t),
		store: storage.NewMemory(),
		out:   &bytes.Buffer{},
	}
}

// opts returns fresh options sharing the same storage, like separate CLI invocations
func (e *testEnv) opts() []Option {
	return []Option{
		WithEnvironment(&config.Environment{Name: "test", BaseURL: e.api.BaseURL()}),
		WithStorage(e.store),
		WithOutput(e.out),
		WithSettings(&appconfig.Config{
			API: appconfig.APIConfig{Timeout: 5 * time.Second},
		}),
	}
}

// output returns and resets captured output
func (e *testEnv) output() string {
	s := e.out.String()
	e.out.Reset()
	return s
}

package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/mock"

	"github.com/arthur-debert/deobf/pkg/fetch"
	"github.com/arthur-debert/deobf/pkg/process"
)

var (
	_ process.Launcher = (*MockLauncher)(nil)
	_ fetch.Fetcher    = (*MockFetcher)(nil)
)

// MockLauncher is a testify mock of process.Launcher. Expectations receive
// (ctx, process.Command).
type MockLauncher struct {
	mock.Mock
	// OnLaunch, when set, runs before the recorded result is returned
	OnLaunch func(cmd process.Command) error
}

func (m *MockLauncher) Launch(ctx context.Context, cmd process.Command) (*process.Result, error) {
	args := m.Called(ctx, cmd)
	if m.OnLaunch != nil {
		if err := m.OnLaunch(cmd); err != nil {
			return nil, err
		}
	}
	if r, ok := args.Get(0).(*process.Result); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// Program matches commands running program
func Program(program string) interface{} {
	return mock.MatchedBy(func(cmd process.Command) bool { return cmd.Program == program })
}

// FakeJavac returns an OnLaunch hook writing classFile (with content
// "compiled") below the -d directory of a javac invocation
func FakeJavac(classFile string) func(cmd process.Command) error {
	return func(cmd process.Command) error {
		for i, arg := range cmd.Args {
			if arg != "-d" || i+1 >= len(cmd.Args) {
				continue
			}
			target := filepath.Join(cmd.Args[i+1], filepath.FromSlash(classFile))
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			return os.WriteFile(target, []byte("compiled"), 0644)
		}
		return nil
	}
}

// MockFetcher is a testify mock of fetch.Fetcher. Expectations receive
// (url, dst); a successful fetch writes the url into dst.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, dst string) error {
	args := m.Called(url, dst)
	if err := args.Error(0); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(url), 0644)
}

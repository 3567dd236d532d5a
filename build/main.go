package main

import (
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"
)

func run(a *goyek.A, name string, args ...string) {
	a.Helper()
	a.Log(name, args)
	cmd := exec.CommandContext(a.Context(), name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		a.Error(err)
	}
}

var vet = goyek.Define(goyek.Task{
	Name:  "vet",
	Usage: "Run go vet on all packages",
	Action: func(a *goyek.A) {
		run(a, "go", "vet", "./...")
	},
})

var test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run all tests with the race detector",
	Action: func(a *goyek.A) {
		run(a, "go", "test", "-race", "-count=1", "./...")
	},
})

var lint = goyek.Define(goyek.Task{
	Name:  "lint",
	Usage: "Run golangci-lint",
	Action: func(a *goyek.A) {
		if _, err := exec.LookPath("golangci-lint"); err != nil {
			a.Skip("golangci-lint is not installed")
		}
		run(a, "golangci-lint", "run", "./...")
	},
})

var _ = goyek.Define(goyek.Task{
	Name:  "all",
	Usage: "Run vet, lint and test",
	Deps:  goyek.Deps{vet, lint, test},
})

func main() {
	goyek.SetDefault(test)
	goyek.Main(os.Args[1:])
}

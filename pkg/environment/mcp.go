package environment

import (
	"context"

	"github.com/spf13/afero"

	"github.com/arthur-debert/deobf/pkg/config"
	"github.com/arthur-debert/deobf/pkg/mappings"
	"github.com/arthur-debert/deobf/pkg/pipeline"
	"github.com/arthur-debert/deobf/pkg/transform"
)

// mcpBackend remaps SRG names with the CSV tables shipped in the mappings archive
type mcpBackend struct{}

func (mcpBackend) name() string { return config.BackendMCP }

func (mcpBackend) sides(client, server bool) []string {
	var sides []string
	if client {
		sides = append(sides, SideClient)
	}
	if server {
		sides = append(sides, SideServer)
	}
	if client && server {
		sides = append(sides, SideJoined)
	}
	return sides
}

func (mcpBackend) chain(fs afero.Fs, mappingsDir string) (*transform.Chain, error) {
	table, err := mappings.LoadDir(fs, mappingsDir)
	if err != nil {
		return nil, err
	}
	return transform.NewChain(transform.NewRemapper(table), transform.NewAnnotationStripper()), nil
}

func (mcpBackend) recompiles(string) bool { return true }

func (mcpBackend) primarySide() string { return SideJoined }

func (mcpBackend) afterExecute(context.Context, *Environment, *pipeline.Run, string, string) error {
	return nil
}

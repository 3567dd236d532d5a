package environment

import (
	"context"

	"github.com/spf13/afero"

	"github.com/arthur-debert/deobf/pkg/config"
	"github.com/arthur-debert/deobf/pkg/pipeline"
	"github.com/arthur-debert/deobf/pkg/transform"
)

// decompileStep names the yarn step whose output holds the untouched decompiled sources
const decompileStep = "decompile"

// yarnBackend consumes sources that are already named; only the client is recompiled
type yarnBackend struct{}

func (yarnBackend) name() string { return config.BackendYarn }

func (yarnBackend) sides(client, server bool) []string {
	var sides []string
	if client {
		sides = append(sides, SideClient)
	}
	if server {
		sides = append(sides, SideServer)
	}
	return sides
}

func (yarnBackend) chain(afero.Fs, string) (*transform.Chain, error) {
	return transform.NewChain(transform.Identity), nil
}

func (yarnBackend) recompiles(side string) bool { return side == SideClient }

func (yarnBackend) primarySide() string { return SideClient }

func (yarnBackend) afterExecute(ctx context.Context, env *Environment, run *pipeline.Run, side, output string) error {
	dir := env.desc.ExportSources
	if dir == "" || side != SideClient {
		return nil
	}
	clean, ok := run.StepOutput(side, decompileStep)
	if !ok {
		env.logger.Warn().Str("step", decompileStep).Msg("No decompile step, exporting modified sources only")
	}
	return ExportSources(ctx, dir, clean, output)
}

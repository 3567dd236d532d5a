package deobf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/deobf/internal/version"
	"github.com/arthur-debert/deobf/pkg/artifact"
	"github.com/arthur-debert/deobf/pkg/cobrax/topics"
	"github.com/arthur-debert/deobf/pkg/config"
	"github.com/arthur-debert/deobf/pkg/environment"
	"github.com/arthur-debert/deobf/pkg/fetch"
	"github.com/arthur-debert/deobf/pkg/logging"
	"github.com/arthur-debert/deobf/pkg/mappings"
	"github.com/arthur-debert/deobf/pkg/patch"
	"github.com/arthur-debert/deobf/pkg/pipeline"
	"github.com/arthur-debert/deobf/pkg/process"
	"github.com/arthur-debert/deobf/pkg/transform"
	"github.com/arthur-debert/deobf/pkg/ui"
	"github.com/arthur-debert/deobf/pkg/ui/display"
)

// globalOptions holds the persistent flags
type globalOptions struct {
	verbosity  int
	configFile string
	format     string
	offline    bool
}

func (o *globalOptions) settings() (*config.Settings, error) {
	overrides := map[string]interface{}{}
	if o.offline {
		overrides["offline"] = true
	}
	return config.LoadSettings(config.LoadOptions{File: o.configFile, Overrides: overrides})
}

func (o *globalOptions) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

func newFetcher(s *config.Settings) fetch.Fetcher {
	if s.Offline {
		return fetch.Offline()
	}
	return fetch.NewHTTPFetcher(fetch.DefaultTimeout)
}

func newRepository(s *config.Settings, f fetch.Fetcher) *artifact.Repository {
	return artifact.NewRepository(s.Repository.Local, f, s.Repository.Remotes...)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "deobf",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, MsgFlagOffline)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newStepsCmd(opts))
	rootCmd.AddCommand(newRemapCmd(opts))
	rootCmd.AddCommand(newPatchCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	_, err := topics.Install(rootCmd, helpTopics(), topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	var sides []string

	cmd := &cobra.Command{
		Use:     "run <environment.toml>",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		Example: MsgRunExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := config.LoadDescriptor(args[0])
			if err != nil {
				return err
			}
			s, err := opts.settings()
			if err != nil {
				return err
			}
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			f := newFetcher(s)
			env, err := environment.New(environment.Options{
				Descriptor:  desc,
				WorkDir:     s.EnvironmentDir(desc.Backend, desc.ConfigVersion),
				Repository:  newRepository(s, f),
				Fetcher:     f,
				Launcher:    process.NewExecLauncher(),
				JavaBinary:  s.Java.Binary,
				JavacBinary: s.Java.Javac,
				JVMArgs:     s.Java.JVMArgs,
			})
			if err != nil {
				return err
			}
			gameVersion, err := env.Version()
			if err != nil {
				return err
			}

			results, err := env.Run(cmd.Context(), sides...)
			if err != nil {
				return err
			}

			table := display.Table{Title: env.Name() + " " + gameVersion, Header: []string{"side", "sources", "compiled"}}
			for _, res := range results {
				compiled := res.Compiled
				if compiled == "" {
					compiled = MsgNotRecompiled
				}
				table.AddRow(res.Side, res.Sources, compiled)
			}
			if err := r.RenderTable(table); err != nil {
				return err
			}
			return r.RenderSuccess(fmt.Sprintf(MsgRunDone, len(results), env.Name(), gameVersion))
		},
	}
	cmd.Flags().StringArrayVar(&sides, "side", nil, MsgFlagSide)
	return cmd
}

func newStepsCmd(opts *globalOptions) *cobra.Command {
	var (
		backend string
		client  string
		server  string
		seeds   map[string]string
	)

	cmd := &cobra.Command{
		Use:     "steps <config.json> <side>",
		Short:   MsgStepsShort,
		Long:    MsgStepsLong,
		Example: MsgStepsExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, side := args[0], args[1]
			if info, err := os.Stat(dir); err == nil && !info.IsDir() {
				dir = filepath.Dir(dir)
			}

			s, err := opts.settings()
			if err != nil {
				return err
			}
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			clientCoord, err := optionalCoordinate(client)
			if err != nil {
				return err
			}
			serverCoord, err := optionalCoordinate(server)
			if err != nil {
				return err
			}

			run, err := pipeline.Load(pipeline.Options{
				Dir:        dir,
				Backend:    backend,
				Client:     clientCoord,
				Server:     serverCoord,
				Repository: newRepository(s, newFetcher(s)),
				Java: &process.Java{
					Launcher: process.NewExecLauncher(),
					Binary:   s.Java.Binary,
					JVMArgs:  s.Java.JVMArgs,
				},
				Seeds: seeds,
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := run.Prepare(ctx, side); err != nil {
				return err
			}
			output, execErr := run.Execute(ctx, side)
			if err := run.WriteReport(); err != nil {
				log.Warn().Err(err).Msg("Failed to write step report")
			}

			table := display.Table{Title: side, Header: []string{"step", "kind", "state", "duration"}}
			for _, res := range run.Results() {
				if res.Side == side {
					table.AddRow(res.Step, res.Kind.String(), res.State.String(), res.Duration.Round(time.Millisecond).String())
				}
			}
			if err := r.RenderTable(table); err != nil {
				return err
			}
			if execErr != nil {
				return execErr
			}
			return r.RenderSuccess(fmt.Sprintf(MsgStepsDone, side, output))
		},
	}
	cmd.Flags().StringVar(&backend, "backend", config.BackendMCP, MsgFlagBackend)
	cmd.Flags().StringVar(&client, "client", "", MsgFlagClient)
	cmd.Flags().StringVar(&server, "server", "", MsgFlagServer)
	cmd.Flags().StringToStringVar(&seeds, "seed", nil, MsgFlagSeed)
	return cmd
}

func optionalCoordinate(value string) (*artifact.Coordinate, error) {
	if value == "" {
		return nil, nil
	}
	c, err := artifact.Parse(value)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func newRemapCmd(opts *globalOptions) *cobra.Command {
	var (
		files []string
		strip bool
	)

	cmd := &cobra.Command{
		Use:     "remap <in.jar> <out.jar>",
		Short:   MsgRemapShort,
		Long:    MsgRemapLong,
		GroupID: "core",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			table := mappings.NewTable()
			for _, file := range files {
				if err := table.LoadFile(fs, file); err != nil {
					return err
				}
			}

			chain := transform.NewChain(transform.NewRemapper(table))
			if strip {
				chain.Add(transform.NewAnnotationStripper())
			}
			if err := chain.Process(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return r.RenderSuccess(fmt.Sprintf(MsgRemapDone, args[0], table.Len(), args[1]))
		},
	}
	cmd.Flags().StringSliceVar(&files, "mappings", nil, MsgFlagMappings)
	cmd.Flags().BoolVar(&strip, "strip", false, MsgFlagStrip)
	_ = cmd.MarkFlagRequired("mappings")
	return cmd
}

func newPatchCmd(opts *globalOptions) *cobra.Command {
	var (
		dir    string
		suffix string
	)

	cmd := &cobra.Command{
		Use:     "patch <in.jar> <out.jar>",
		Short:   MsgPatchShort,
		Long:    MsgPatchLong,
		GroupID: "core",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			set, err := patch.LoadSet(afero.NewOsFs(), dir, suffix)
			if err != nil {
				return err
			}
			report, err := set.ApplyArchive(cmd.Context(), args[0], args[1], logging.GetLogger("cmd.patch"))
			if err != nil {
				return err
			}

			for _, target := range report.Unmatched {
				if err := r.RenderWarning(fmt.Sprintf(MsgPatchUnused, target)); err != nil {
					return err
				}
			}
			return r.RenderSuccess(fmt.Sprintf(MsgPatchDone, len(report.Applied), args[1]))
		},
	}
	cmd.Flags().StringVar(&dir, "patches", "", MsgFlagPatches)
	cmd.Flags().StringVar(&suffix, "suffix", patch.SuffixJava, MsgFlagSuffix)
	_ = cmd.MarkFlagRequired("patches")
	return cmd
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			table := display.Table{Header: []string{"key", "value"}}
			table.AddRow("cache_dir", s.CacheDir)
			table.AddRow("offline", strconv.FormatBool(s.Offline))
			table.AddRow("repository.local", s.Repository.Local)
			table.AddRow("repository.remotes", strings.Join(s.Repository.Remotes, ","))
			table.AddRow("java.binary", s.Java.Binary)
			table.AddRow("java.javac", s.Java.Javac)
			table.AddRow("java.jvmargs", strings.Join(s.Java.JVMArgs, " "))
			return r.RenderTable(table)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "deobf version %s\n", version.Version)
			_, _ = fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			_, _ = fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

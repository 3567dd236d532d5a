package process

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deobf/pkg/archive"
	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/logging"
)

// Java runs jar tools
type Java struct {
	Launcher Launcher
	// Binary defaults to "java"
	Binary string
	// JVMArgs precede the per-call JVM arguments of every invocation
	JVMArgs []string
}

// RunJar launches java <jvmArgs> -jar <jar> <args> in dir
func (j *Java) RunJar(ctx context.Context, dir, jar string, jvmArgs, args []string) (*Result, error) {
	binary := j.Binary
	if binary == "" {
		binary = "java"
	}
	argv := make([]string, 0, len(j.JVMArgs)+len(jvmArgs)+len(args)+2)
	argv = append(argv, j.JVMArgs...)
	argv = append(argv, jvmArgs...)
	argv = append(argv, "-jar", jar)
	argv = append(argv, args...)
	return j.Launcher.Launch(ctx, Command{Program: binary, Args: argv, Dir: dir})
}

// Compiler recompiles source archives into class jars
type Compiler struct {
	Launcher Launcher
	// Binary defaults to "javac"
	Binary string
	// TempDir hosts the scratch directories; defaults to os.TempDir()
	TempDir string
}

// Compile extracts the sources jar, compiles every .java file against
// libraries and writes out a jar holding the compiled classes plus every
// non-source entry of the sources jar.
func (c *Compiler) Compile(ctx context.Context, sources, out string, libraries []string) (err error) {
	logger := logging.GetLogger("process").With().Str("sources", sources).Logger()
	done := logging.LogOperationStart(logger, "compile")
	defer done()

	work, err := os.MkdirTemp(c.TempDir, "deobf-compile-")
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheIO, "failed to create compile directory")
	}
	defer func() {
		if rmErr := os.RemoveAll(work); rmErr != nil {
			logger.Warn().Err(rmErr).Str("dir", work).Msg("Failed to remove compile directory")
		}
	}()

	srcDir := filepath.Join(work, "src")
	classDir := filepath.Join(work, "classes")
	if err := os.MkdirAll(classDir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrCacheIO, "failed to create class output directory")
	}
	if err := archive.Extract(ctx, sources, srcDir, archive.ExtractOptions{}); err != nil {
		return err
	}

	var files []string
	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".java") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheIO, "failed to list extracted sources")
	}

	if len(files) > 0 {
		// Source lists easily exceed the command line limit
		argFile := filepath.Join(work, "sources.txt")
		if err := os.WriteFile(argFile, []byte(quoteArgs(files)), 0644); err != nil {
			return errors.Wrap(err, errors.ErrCacheIO, "failed to write javac source list")
		}

		binary := c.Binary
		if binary == "" {
			binary = "javac"
		}
		args := []string{}
		if len(libraries) > 0 {
			args = append(args, "-classpath", strings.Join(libraries, string(os.PathListSeparator)))
		}
		args = append(args, "-encoding", "utf8", "-d", classDir, "@"+argFile)

		result, err := c.Launcher.Launch(ctx, Command{Program: binary, Args: args, Dir: work})
		if err != nil {
			return err
		}
		if !result.Success() {
			logger.Error().
				Str("stdout", string(result.Stdout)).
				Str("stderr", string(result.Stderr)).
				Int("exit_code", result.ExitCode).
				Msg("javac failed")
			return errors.Newf(errors.ErrCompile, "javac exited with code %d", result.ExitCode).
				WithDetail("sources", sources).
				WithDetail("stderr", string(result.Stderr))
		}
	}

	isSource := func(rel string) bool { return strings.HasSuffix(rel, ".java") }
	return archive.WriteTrees(out, isSource, srcDir, classDir)
}

// quoteArgs renders paths for a javac @argfile, one per line
func quoteArgs(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(filepath.ToSlash(p), `"`, `\"`))
		b.WriteString("\"\n")
	}
	return b.String()
}

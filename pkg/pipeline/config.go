package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/deobf/pkg/artifact"
	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/logging"
)

// SupportedSpec is the only config.json spec version understood
const SupportedSpec = 1

// StepsDir holds every step output below the config directory
const StepsDir = "steps"

// function is one entry of the functions block
type function struct {
	Repo    string   `yaml:"repo"`
	Version string   `yaml:"version"`
	Args    []string `yaml:"args"`
	JVMArgs []string `yaml:"jvmargs"`
}

type rawConfig struct {
	Spec        *int                `yaml:"spec"`
	SpecVersion *int                `yaml:"specVersion"`
	Data        yaml.Node           `yaml:"data"`
	Functions   map[string]function `yaml:"functions"`
	Steps       yaml.Node           `yaml:"steps"`
}

// Load reads Options.Dir/config.json and builds a Run from it
func Load(opts Options) (*Run, error) {
	path := filepath.Join(opts.Dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read %s", path)
	}
	return Parse(data, opts)
}

// Parse builds a Run from config.json content. JSON is read through the YAML
// decoder, which accepts it as a subset.
func Parse(data []byte, opts Options) (*Run, error) {
	opts.applyDefaults()
	logger := logging.OrDefault(opts.Logger, "pipeline")

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse pipeline configuration")
	}

	spec := raw.Spec
	if spec == nil {
		spec = raw.SpecVersion
	}
	if spec == nil {
		return nil, errors.New(errors.ErrConfigValid, "pipeline configuration has no spec version")
	}
	if *spec != SupportedSpec {
		return nil, errors.Newf(errors.ErrUnsupportedSpec, "only spec version %d is supported, got %d", SupportedSpec, *spec).
			WithDetail("spec", *spec)
	}

	r := newRun(opts, logger)
	p := &parser{run: r, opts: opts, functions: raw.Functions}

	if opts.Repository != nil {
		if opts.Client != nil {
			r.registry.Set("downloadClientOutput", opts.Repository.Path(*opts.Client))
		}
		if opts.Server != nil {
			r.registry.Set("downloadServerOutput", opts.Repository.Path(*opts.Server))
		}
	}
	for name, value := range opts.Seeds {
		r.registry.Set(name, value)
	}

	if err := p.parseData(&raw.Data); err != nil {
		return nil, err
	}
	for name, fn := range raw.Functions {
		if fn.Repo == "" || fn.Version == "" {
			return nil, errors.Newf(errors.ErrConfigValid, "function %s needs repo and version", name)
		}
		if _, err := artifact.Parse(fn.Version); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "function %s has an invalid version", name)
		}
	}
	if err := p.parseSteps(&raw.Steps); err != nil {
		return nil, err
	}

	logger.Debug().
		Strs("sides", r.order).
		Int("variables", len(r.registry.values)).
		Msg("Pipeline configuration parsed")
	return r, nil
}

type parser struct {
	run       *Run
	opts      Options
	functions map[string]function
}

func (p *parser) path(partial string) string {
	if filepath.IsAbs(partial) {
		return partial
	}
	return filepath.Join(p.opts.Dir, filepath.FromSlash(partial))
}

// parseData reads the data block: plain strings are unscoped paths, objects
// map sides to paths.
func (p *parser) parseData(node *yaml.Node) error {
	if node.Kind == 0 {
		return errors.New(errors.ErrConfigValid, "pipeline configuration has no data block")
	}
	if node.Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfigValid, "data must be an object")
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name, value := node.Content[i].Value, node.Content[i+1]
		switch value.Kind {
		case yaml.ScalarNode:
			p.run.registry.Set(name, p.path(value.Value))
		case yaml.MappingNode:
			for j := 0; j+1 < len(value.Content); j += 2 {
				side, nested := value.Content[j].Value, value.Content[j+1]
				if nested.Kind != yaml.ScalarNode {
					return errors.Newf(errors.ErrConfigValid, "data %s.%s must be a string", name, side)
				}
				p.run.registry.SetScoped(side, name, p.path(nested.Value))
			}
		default:
			return errors.Newf(errors.ErrConfigValid, "data %s must be a string or an object", name).
				WithDetail("line", value.Line)
		}
	}
	return nil
}

func (p *parser) parseSteps(node *yaml.Node) error {
	if node.Kind == 0 {
		return errors.New(errors.ErrConfigValid, "pipeline configuration has no steps block")
	}
	if node.Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfigValid, "steps must be an object")
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		side, list := node.Content[i].Value, node.Content[i+1]
		if _, dup := p.run.sides[side]; dup {
			return errors.Newf(errors.ErrConfigValid, "steps for side %s are defined twice", side)
		}
		if list.Kind != yaml.SequenceNode {
			return errors.Newf(errors.ErrConfigValid, "steps of %s must be an array", side)
		}

		p.run.registry.SetScoped(side, "log", filepath.Join(p.opts.Dir, StepsDir, side, "other.log"))

		steps := make([]Step, 0, len(list.Content))
		for idx, entry := range list.Content {
			values, err := stepValues(entry)
			if err != nil {
				return errors.Wrapf(err, errors.ErrConfigValid, "step %d of %s", idx, side)
			}
			step, err := p.parseStep(side, values)
			if err != nil {
				return err
			}
			if step != nil {
				steps = append(steps, step)
			}
		}
		p.run.addSide(side, steps)
	}
	return nil
}

// stepValues flattens a step object into strings
func stepValues(node *yaml.Node) (map[string]string, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrConfigValid, "step must be an object")
	}
	values := make(map[string]string, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, errors.Newf(errors.ErrConfigValid, "step value %s must be a string", key)
		}
		values[key] = value.Value
	}
	return values, nil
}

func (p *parser) parseStep(side string, values map[string]string) (Step, error) {
	typ := values["type"]
	if typ == "" {
		return nil, errors.Newf(errors.ErrConfigValid, "a step of %s has no type", side)
	}
	if ignoredTypes[typ] {
		return nil, nil
	}
	name := values["name"]
	if name == "" {
		name = typ
	}
	reg := p.run.registry

	fail := func(err error) error {
		return errors.Wrapf(err, errors.GetErrorCode(err), "invalid step %s of %s", name, side).
			WithDetail("side", side).
			WithDetail("step", name)
	}

	if raw, ok := values["input"]; ok {
		input, err := reg.Resolve(raw, side, values)
		if err != nil {
			return nil, fail(err)
		}
		values["input"] = input
	}
	needInput := func() (string, error) {
		input, ok := values["input"]
		if !ok {
			return "", errors.Newf(errors.ErrConfigValid, "%s steps require an input", typ)
		}
		return input, nil
	}

	if fn, ok := p.functions[typ]; ok {
		output := p.output(side, name, "jar")
		values["output"] = output
		step, err := newToolStep(name, output, fn, side, reg, values, p.opts)
		if err != nil {
			return nil, fail(err)
		}
		return step, nil
	}

	switch typ {
	case "inject":
		input, err := needInput()
		if err != nil {
			return nil, fail(err)
		}
		output := p.output(side, name, "jar")
		values["output"] = output
		return newInjectStep(name, input, output, p.opts), nil

	case "strip":
		input, err := needInput()
		if err != nil {
			return nil, fail(err)
		}
		mappingsPath, err := reg.Resolve("{mappings}", side, nil)
		if err != nil {
			return nil, fail(err)
		}
		output := p.output(side, name, "jar")
		values["output"] = output

		mode := values["mode"]
		if mode == "" {
			mode = modeWhitelist
		}
		if mode, err = reg.Resolve(mode, side, values); err != nil {
			return nil, fail(err)
		}
		var whitelist bool
		switch strings.ToLower(mode) {
		case modeWhitelist:
			whitelist = true
		case modeBlacklist:
		default:
			return nil, fail(errors.Newf(errors.ErrConfigValid, "unknown strip mode %q", mode).
				WithDetail("allowed", []string{modeWhitelist, modeBlacklist}))
		}
		return newStripStep(name, input, output, mappingsPath, whitelist, p.opts), nil

	case "patch":
		input, err := needInput()
		if err != nil {
			return nil, fail(err)
		}
		output := p.output(side, name, "jar")
		values["output"] = output
		patches, err := reg.Resolve("{patches}", side, values)
		if err != nil {
			return nil, fail(err)
		}
		return newPatchStep(name, input, output, patches, p.opts), nil

	case "listLibraries":
		if p.opts.Client == nil || p.opts.Repository == nil {
			return nil, fail(errors.New(errors.ErrConfigValid, "listLibraries needs the client artifact and a repository"))
		}
		output := p.output(side, name, "txt")
		values["output"] = output
		return newLibrariesStep(name, output, *p.opts.Client, p.opts), nil
	}

	return nil, fail(errors.Newf(errors.ErrConfigValid, "type %s is neither a builtin step nor a declared function", typ).
		WithDetail("type", typ))
}

// output allocates the output path of a step and registers it as
// <side>|<name>Output
func (p *parser) output(side, name, ext string) string {
	path := filepath.Join(p.opts.Dir, StepsDir, side, name+"."+ext)
	p.run.registry.SetScoped(side, name+"Output", path)
	return path
}

package artifact

import (
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// Dependency scopes that end up on a compile or runtime classpath
const (
	ScopeCompile = "compile"
	ScopeRuntime = "runtime"
)

// Dependency is one entry of a POM dependencies block
type Dependency struct {
	Coordinate
	Scope    string
	Optional bool
}

// ReadPom returns the direct dependencies declared by the POM at path.
// Only compile and runtime scoped entries are returned; a missing scope means compile.
func ReadPom(path string) ([]Dependency, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrArtifactMissing, "POM %s does not exist", path)
		}
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse POM %s", path)
	}

	project := doc.SelectElement("project")
	if project == nil {
		return nil, errors.Newf(errors.ErrConfigParse, "POM %s has no project element", path)
	}

	var deps []Dependency
	block := project.SelectElement("dependencies")
	if block == nil {
		return deps, nil
	}
	for i, el := range block.SelectElements("dependency") {
		dep := Dependency{
			Coordinate: Coordinate{
				Group:      childText(el, "groupId"),
				Name:       childText(el, "artifactId"),
				Version:    childText(el, "version"),
				Classifier: childText(el, "classifier"),
			},
			Scope:    childText(el, "scope"),
			Optional: childText(el, "optional") == "true",
		}
		if t := childText(el, "type"); t != "" && t != DefaultExtension {
			dep.Extension = t
		}
		if dep.Scope == "" {
			dep.Scope = ScopeCompile
		}
		if dep.Group == "" || dep.Name == "" || dep.Version == "" {
			return nil, errors.Newf(errors.ErrConfigParse, "dependency %d in POM %s is incomplete", i, path)
		}
		if dep.Scope != ScopeCompile && dep.Scope != ScopeRuntime {
			continue
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// WritePom writes a POM for c listing deps
func WritePom(path string, c Coordinate, deps []Dependency) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	project := doc.CreateElement("project")
	project.CreateAttr("xmlns", "http://maven.apache.org/POM/4.0.0")
	project.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	project.CreateAttr("xsi:schemaLocation", "http://maven.apache.org/POM/4.0.0 http://maven.apache.org/xsd/maven-4.0.0.xsd")
	project.CreateElement("modelVersion").SetText("4.0.0")
	project.CreateElement("groupId").SetText(c.Group)
	project.CreateElement("artifactId").SetText(c.Name)
	project.CreateElement("version").SetText(c.Version)

	if len(deps) > 0 {
		block := project.CreateElement("dependencies")
		for _, dep := range deps {
			el := block.CreateElement("dependency")
			el.CreateElement("groupId").SetText(dep.Group)
			el.CreateElement("artifactId").SetText(dep.Name)
			el.CreateElement("version").SetText(dep.Version)
			if dep.Classifier != "" {
				el.CreateElement("classifier").SetText(dep.Classifier)
			}
			if dep.Extension != "" && dep.Extension != DefaultExtension {
				el.CreateElement("type").SetText(dep.Extension)
			}
			scope := dep.Scope
			if scope == "" {
				scope = ScopeCompile
			}
			el.CreateElement("scope").SetText(scope)
			if dep.Optional {
				el.CreateElement("optional").SetText("true")
			}
		}
	}
	doc.Indent(2)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", filepath.Dir(path))
	}
	if err := doc.WriteToFile(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write POM %s", path)
	}
	return nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return child.Text()
}

package artifact

import (
	"path"
	"strings"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// DefaultExtension is used when a coordinate does not name one
const DefaultExtension = "jar"

// Coordinate identifies one artifact file
type Coordinate struct {
	Group      string
	Name       string
	Version    string
	Classifier string
	Extension  string
}

// Parse reads group:name:version[:classifier][@ext]
func Parse(s string) (Coordinate, error) {
	var c Coordinate
	s = strings.TrimSpace(s)

	if at := strings.LastIndex(s, "@"); at >= 0 {
		c.Extension = s[at+1:]
		s = s[:at]
		if c.Extension == "" {
			return Coordinate{}, errors.Newf(errors.ErrInvalidInput, "empty extension in coordinate %q", s)
		}
	}

	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return Coordinate{}, errors.Newf(errors.ErrInvalidInput, "coordinate %q is not group:name:version", s)
	}
	c.Group, c.Name, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	if c.Group == "" || c.Name == "" || c.Version == "" {
		return Coordinate{}, errors.Newf(errors.ErrInvalidInput, "coordinate %q has empty parts", s)
	}
	return c, nil
}

// MustParse is Parse for literals known to be valid
func MustParse(s string) Coordinate {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the coordinate the way Parse reads it
func (c Coordinate) String() string {
	var b strings.Builder
	b.WriteString(c.Group)
	b.WriteByte(':')
	b.WriteString(c.Name)
	b.WriteByte(':')
	b.WriteString(c.Version)
	if c.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(c.Classifier)
	}
	if c.Extension != "" {
		b.WriteByte('@')
		b.WriteString(c.Extension)
	}
	return b.String()
}

// Ext returns the file extension, defaulting to jar
func (c Coordinate) Ext() string {
	if c.Extension == "" {
		return DefaultExtension
	}
	return c.Extension
}

// WithClassifier returns a copy with the classifier replaced
func (c Coordinate) WithClassifier(classifier string) Coordinate {
	c.Classifier = classifier
	return c
}

// WithExtension returns a copy with the extension replaced
func (c Coordinate) WithExtension(ext string) Coordinate {
	c.Extension = ext
	return c
}

// Dir is the slash separated directory of the artifact, relative to a repository root
func (c Coordinate) Dir() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Name, c.Version)
}

// FileName is the artifact file name
func (c Coordinate) FileName() string {
	name := c.Name + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + c.Ext()
}

// RelativePath joins Dir and FileName
func (c Coordinate) RelativePath() string {
	return path.Join(c.Dir(), c.FileName())
}

// PomRelativePath is the POM describing the artifact. Classifier and extension do not apply.
func (c Coordinate) PomRelativePath() string {
	return path.Join(c.Dir(), c.Name+"-"+c.Version+".pom")
}

package deobf

import (
	"embed"
	"io/fs"
)

//go:embed topics/*.md
var embeddedTopics embed.FS

// helpTopics returns the embedded topic files rooted at the topics directory
func helpTopics() fs.FS {
	sub, err := fs.Sub(embeddedTopics, "topics")
	if err != nil {
		panic(err)
	}
	return sub
}

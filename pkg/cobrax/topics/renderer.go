package topics

// Renderer formats topic content for the terminal. format is the file
// extension, including the dot.
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer returns content unchanged
type PlainRenderer struct{}

// Render returns content unchanged
func (r *PlainRenderer) Render(content string, format string) string {
	return content
}

package render

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	if opts.Math {
		content = PrepareMath(content)
	}

	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownOrPlain renders content, falling back to the raw text when
// glamour fails. Streaming replies are often cut mid-construct.
func MarkdownOrPlain(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return out
}

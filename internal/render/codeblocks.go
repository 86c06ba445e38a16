package render

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock is a fenced code block found in a reply
type CodeBlock struct {
	Language string
	Code     string
}

// Label is the header shown above the block: the language upper-cased, or CODE.
func (b CodeBlock) Label() string {
	if b.Language == "" {
		return "CODE"
	}
	return strings.ToUpper(b.Language)
}

var codeParser = goldmark.New().Parser()

// ExtractCodeBlocks returns the fenced code blocks of md in document order.
// An unterminated fence (still streaming) runs to the end of the text.
func ExtractCodeBlocks(md string) []CodeBlock {
	src := []byte(md)
	doc := codeParser.Parse(text.NewReader(src))

	var blocks []CodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var code strings.Builder
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(src))
		}

		blocks = append(blocks, CodeBlock{
			Language: string(fenced.Language(src)),
			Code:     strings.TrimRight(code.String(), "\n"),
		})
		return ast.WalkSkipChildren, nil
	})

	return blocks
}

// LastCodeBlock returns the final fenced code block of md
func LastCodeBlock(md string) (CodeBlock, bool) {
	blocks := ExtractCodeBlocks(md)
	if len(blocks) == 0 {
		return CodeBlock{}, false
	}
	return blocks[len(blocks)-1], true
}

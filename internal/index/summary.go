package index

import (
	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/parser"
)

// Summary is what the index records about a snapshot's content.
type Summary struct {
	ItemCount int
	Body      string
	Tags      []string
}

// Summarize collects the searchable text and #tags of every item, bottom of
// the stack first.
func Summarize(s *board.Snapshot) Summary {
	var fields []string
	for _, it := range s.Items.StackOrder() {
		fields = append(fields, it.Content.Strings()...)
	}
	res := parser.Parse(fields)
	return Summary{
		ItemCount: s.Items.Len(),
		Body:      res.Body,
		Tags:      res.Tags,
	}
}

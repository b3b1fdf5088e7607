package printer

import (
	"github.com/pipe01/xmltok/internal/workspace"
	"github.com/pipe01/xmltok/lexer"
)

const (
	KindText      = "text"
	KindOpen      = "open"
	KindClose     = "close"
	KindSelfClose = "selfclose"
)

// Record is the serialized form of a token.
type Record struct {
	Kind   string `json:"kind" msgpack:"kind"`
	Line   int    `json:"line" msgpack:"line"`
	Column int    `json:"column" msgpack:"column"`
	Start  int    `json:"start" msgpack:"start"`
	End    int    `json:"end" msgpack:"end"`

	Text  string       `json:"text,omitempty" msgpack:"text,omitempty"`
	Name  string       `json:"name,omitempty" msgpack:"name,omitempty"`
	Pairs []PairRecord `json:"pairs,omitempty" msgpack:"pairs,omitempty"`
}

// PairRecord keeps a nil Value for attributes written without one.
type PairRecord struct {
	Key   string  `json:"key" msgpack:"key"`
	Value *string `json:"value" msgpack:"value"`
}

func kindOf(typ lexer.TagType) string {
	switch typ {
	case lexer.TagClose:
		return KindClose
	case lexer.TagSelfClose:
		return KindSelfClose
	}

	return KindOpen
}

// Records converts the tokens of doc. 1-based lines and columns are used, the
// same way editors and compilers print them.
func Records(doc *workspace.Document) []Record {
	idx := lexer.NewLineIndex(doc.Contents)
	recs := make([]Record, 0, len(doc.Tokens))

	for _, tk := range doc.Tokens {
		span := tk.Span()
		loc := idx.Location(span.Start)

		rec := Record{
			Line:   loc.Line + 1,
			Column: loc.Column + 1,
			Start:  span.Start,
			End:    span.End,
		}

		switch tk := tk.(type) {
		case lexer.Text:
			rec.Kind = KindText
			rec.Text = string(tk.Data)

		case *lexer.Tag:
			rec.Kind = kindOf(tk.Type)
			rec.Name = string(tk.Name)

			for _, p := range tk.Pairs {
				pr := PairRecord{Key: string(p.Key)}
				if v, ok := p.Val(); ok {
					s := string(v)
					pr.Value = &s
				}
				rec.Pairs = append(rec.Pairs, pr)
			}
		}

		recs = append(recs, rec)
	}

	return recs
}

package repository

import (
	"fmt"

	"github.com/valyala/fastjson"
)

// Evaluator tests raw JSON documents against predicates without decoding
// them into structs, so records missing a field simply fail that condition.
type Evaluator struct {
	parsers fastjson.ParserPool
}

// Match reports whether doc satisfies every condition of p. Strings compare
// verbatim, booleans as "true"/"false", numbers by their literal text.
// Missing, null, object and array fields never match.
func (e *Evaluator) Match(p Predicate, doc []byte) (bool, error) {
	parser := e.parsers.Get()
	defer e.parsers.Put(parser)

	v, err := parser.ParseBytes(doc)
	if err != nil {
		return false, fmt.Errorf("parse document: %w", err)
	}
	if v.Type() != fastjson.TypeObject {
		return false, fmt.Errorf("parse document: not an object")
	}
	for _, c := range p {
		got, ok := scalar(v.Get(c.Field))
		if !ok || got != c.Value {
			return false, nil
		}
	}
	return true, nil
}

func scalar(v *fastjson.Value) (string, bool) {
	if v == nil {
		return "", false
	}
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes()), true
	case fastjson.TypeTrue:
		return "true", true
	case fastjson.TypeFalse:
		return "false", true
	case fastjson.TypeNumber:
		return v.String(), true
	default:
		return "", false
	}
}

package jsonld

import (
	"strings"

	nextgen "github.com/totegamma/nextgen-portal"
)

// ExtractValue returns the @value of a literal, or of the first entry of a
// sequence. Anything else yields "".
func ExtractValue(n Node) string {
	if seq, ok := n.(Sequence); ok {
		if len(seq) == 0 {
			return ""
		}
		n = seq[0]
	}
	switch n := n.(type) {
	case Literal:
		return stringify(n.Value)
	case Scalar:
		return stringify(n.V)
	}
	return ""
}

// ExtractLanguageValue picks the literal tagged with lang, falling back to the
// first entry. An empty lang means English.
func ExtractLanguageValue(n Node, lang string) string {
	if lang == "" {
		lang = nextgen.DefaultLanguage
	}
	seq, ok := n.(Sequence)
	if !ok {
		return ExtractValue(n)
	}
	for _, item := range seq {
		if lit, ok := item.(Literal); ok && lit.Language == lang {
			return stringify(lit.Value)
		}
	}
	return ExtractValue(seq)
}

// ExtractByPath walks dot separated property names from n and extracts the
// value found at the end.
func ExtractByPath(n Node, path string) string {
	current := n
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(*Object)
		if !ok || obj == nil {
			return ""
		}
		current = obj.Get(part)
		if current == nil {
			return ""
		}
	}
	return ExtractValue(current)
}

// valueOrID extracts a literal, falling back to the @id of a node reference.
func valueOrID(n Node) string {
	if v := ExtractValue(n); v != "" {
		return v
	}
	if obj := AsObject(n); obj != nil {
		return obj.ID
	}
	return ""
}

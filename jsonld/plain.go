package jsonld

import (
	"regexp"
	"strings"

	nextgen "github.com/totegamma/nextgen-portal"
)

// MaxDepth bounds how deep ToPlainObject descends. Deeper nodes are returned
// in raw form.
const MaxDepth = 10

type PlainOptions struct {
	Language        string
	FlattenArrays   bool // single element sequences become the element
	ExcludeOriginal bool // drop CURIE keys and keep only the camel-case alias
	IncludeRaw      bool
}

func DefaultPlainOptions() PlainOptions {
	return PlainOptions{
		Language:      nextgen.DefaultLanguage,
		FlattenArrays: true,
	}
}

// ToPlainObject deep-unwraps a node object into plain values: literals become
// strings, CURIE keys gain camel-case aliases and a set of convenience fields
// (title, publisher, distribution, ...) is added on every identified object.
func ToPlainObject(n Node, opts PlainOptions) map[string]any {
	obj, ok := n.(*Object)
	if !ok || obj == nil {
		return map[string]any{}
	}
	if opts.Language == "" {
		opts.Language = nextgen.DefaultLanguage
	}
	return plainObject(obj, opts, 0)
}

func plainObject(obj *Object, opts PlainOptions, depth int) map[string]any {
	types := obj.Types
	if len(types) == 0 {
		types = []string{""}
	}
	result := map[string]any{
		"id":   obj.ID,
		"type": types,
	}

	for key, value := range obj.Props {
		if strings.HasPrefix(key, "@") {
			result[key] = Raw(value)
			continue
		}
		processed := plainValue(value, opts, depth)
		if !opts.ExcludeOriginal {
			result[key] = processed
		}
		result[CamelKey(key)] = processed
	}

	addConvenienceFields(result, obj, opts)

	if opts.IncludeRaw {
		result["_raw"] = Raw(obj)
	}
	return result
}

func plainValue(n Node, opts PlainOptions, depth int) any {
	if n == nil {
		return nil
	}
	if depth > MaxDepth {
		return Raw(n)
	}

	switch v := n.(type) {
	case Scalar:
		return v.V
	case Literal:
		return stringify(v.Value)
	case Sequence:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, plainValue(item, opts, depth+1))
		}
		if opts.FlattenArrays && len(out) == 1 {
			return out[0]
		}
		return out
	case *Object:
		if v == nil {
			return nil
		}
		if v.Identified() {
			return plainObject(v, opts, depth+1)
		}
		m := make(map[string]any, len(v.Props))
		for key, value := range v.Props {
			processed := plainValue(value, opts, depth+1)
			if !opts.ExcludeOriginal {
				m[key] = processed
			}
			if alias := CamelKey(key); alias != key {
				m[alias] = processed
			}
		}
		return m
	}
	return nil
}

func addConvenienceFields(result map[string]any, obj *Object, opts PlainOptions) {
	lang := opts.Language

	if n := obj.Get("dcterms:title"); n != nil {
		result["title"] = ExtractLanguageValue(n, lang)
	}
	if n := obj.Get("dcterms:description"); n != nil {
		result["description"] = ExtractLanguageValue(n, lang)
	}
	if n := obj.Get("dcterms:identifier"); n != nil {
		result["identifier"] = ExtractValue(n)
	}
	if n := obj.Get("dcterms:modified"); n != nil {
		result["lastModified"] = ExtractValue(n)
	}
	if n := obj.Get("dcterms:issued"); n != nil {
		result["issued"] = ExtractValue(n)
	}

	if n := obj.Get("dcat:keyword"); n != nil {
		keywords := []string{}
		for _, k := range Seq(n) {
			keywords = append(keywords, ExtractValue(k))
		}
		result["keywords"] = keywords
	}

	if n := obj.Get("dcat:theme"); n != nil {
		themes := []map[string]any{}
		for _, t := range Seq(n) {
			theme, _ := t.(*Object)
			entry := map[string]any{
				"id":    idOf(theme),
				"label": ExtractLanguageValue(theme.Get("skos:prefLabel"), lang),
			}
			if opts.IncludeRaw {
				entry["raw"] = Raw(t)
			}
			themes = append(themes, entry)
		}
		result["themes"] = themes
	}

	if publisher := AsObject(obj.Get("dcterms:publisher")); publisher != nil {
		entry := map[string]any{
			"id":         publisher.ID,
			"name":       ExtractValue(publisher.Get("foaf:name")),
			"identifier": ExtractValue(publisher.Get("dcterms:identifier")),
		}
		if opts.IncludeRaw {
			entry["raw"] = Raw(publisher)
		}
		result["publisher"] = entry
	}

	if dist := AsObject(obj.Get("dcat:distribution")); dist != nil {
		availability := AsObject(dist.Get("dcatap:availability"))
		entry := map[string]any{
			"id":          dist.ID,
			"description": ExtractLanguageValue(dist.Get("dcterms:description"), lang),
			"accessURL":   valueOrID(dist.Get("dcat:accessURL")),
			"format":      valueOrID(dist.Get("dcat:format")),
			"byteSize":    ExtractValue(dist.Get("dcat:byteSize")),
			"availability": map[string]any{
				"id":    idOf(availability),
				"label": ExtractLanguageValue(availability.Get("skos:prefLabel"), lang),
			},
		}
		if opts.IncludeRaw {
			entry["raw"] = Raw(dist)
		}
		result["distribution"] = entry
	}
}

func idOf(o *Object) string {
	if o == nil {
		return ""
	}
	return o.ID
}

var (
	curieSeparator = regexp.MustCompile(`[:-]`)
	camelBoundary  = regexp.MustCompile(`_([a-z])`)
)

// CamelKey turns "dcterms:title" into "dctermsTitle".
func CamelKey(key string) string {
	s := curieSeparator.ReplaceAllString(key, "_")
	return camelBoundary.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ToUpper(m[1:])
	})
}

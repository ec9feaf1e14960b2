// Package parser recognizes options, positionals and subcommands in
// normalized help text and assembles them into a model.Command.
package parser

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/MuntasirSZN/d2o/internal/model"
	"github.com/MuntasirSZN/d2o/internal/source"
	"github.com/MuntasirSZN/d2o/internal/text"
)

// Parse runs normalization, recognition and building on one document.
func Parse(name string, doc *source.RawDocument) *model.Command {
	return Build(name, Recognize(text.Normalize(doc)))
}

// sectionClass is what a section heading says about the lines below it.
type sectionClass int

const (
	classOther sectionClass = iota
	classUsage
	classExamples
	classOptions
	classArguments
	classCommands
	className
)

// headingKeywords are matched anywhere in a canonical heading. When several
// match, the class listed first wins: "COMMAND OPTIONS" holds options.
var headingKeywords = []struct {
	keyword string
	class   sectionClass
}{
	{"USAGE", classUsage},
	{"SYNOPSIS", classUsage},
	{"EXAMPLE", classExamples},
	{"OPTION", classOptions},
	{"FLAG", classOptions},
	{"ARGUMENT", classArguments},
	{"ARGS", classArguments},
	{"POSITIONAL", classArguments},
	{"COMMAND", classCommands},
	{"NAME", className},
}

var headingMatcher = func() *ahocorasick.Matcher {
	words := make([]string, len(headingKeywords))
	for i, k := range headingKeywords {
		words[i] = k.keyword
	}
	return ahocorasick.NewStringMatcher(words)
}()

func classify(heading string) sectionClass {
	if heading == text.Preamble {
		return classOther
	}
	hits := headingMatcher.MatchThreadSafe([]byte(heading))
	if len(hits) == 0 {
		return classOther
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h < best {
			best = h
		}
	}
	class := headingKeywords[best].class
	// "NAME" only counts as the whole heading; "FILE NAMES" is prose.
	if class == className && strings.TrimSpace(heading) != "NAME" {
		return classOther
	}
	return class
}

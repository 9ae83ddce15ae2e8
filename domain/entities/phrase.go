package entities

import (
	"fmt"
	"strings"

	"snap_behat/domain/errs"
)

// Phrase is a single human-readable step instruction, e.g. `I follow "Menu"`.
type Phrase string

// PhraseInput is either a Literal string or an already built Phrase.
type PhraseInput interface {
	toPhrase() Phrase
}

// Literal is raw step text that has not been turned into a Phrase yet.
type Literal string

func (l Literal) toPhrase() Phrase { return Phrase(l) }

func (p Phrase) toPhrase() Phrase { return p }

// Sequence is an ordered list of phrases dispatched one after another.
type Sequence []Phrase

// Then returns a new sequence with more appended.
func (s Sequence) Then(more ...Phrase) Sequence {
	out := make(Sequence, 0, len(s)+len(more))
	out = append(out, s...)
	return append(out, more...)
}

// Strings returns the phrases as plain strings.
func (s Sequence) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = string(p)
	}
	return out
}

// Normalize turns mixed inputs into a Sequence. A nil input is rejected.
func Normalize(inputs ...PhraseInput) (Sequence, error) {
	seq := make(Sequence, 0, len(inputs))
	for i, in := range inputs {
		if in == nil {
			return nil, errs.Newf(errs.MalformedInput, "phrase input %d must be a literal or a phrase", i)
		}
		seq = append(seq, in.toPhrase())
	}
	return seq, nil
}

var (
	escaper   = strings.NewReplacer(`"`, `\"`)
	unescaper = strings.NewReplacer(`\"`, `"`)
)

// Escape makes s safe to embed between double quotes in a phrase.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape on a captured phrase argument.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// Phrasef formats a phrase, escaping every string argument.
func Phrasef(format string, args ...interface{}) Phrase {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			escaped[i] = Escape(s)
			continue
		}
		escaped[i] = a
	}
	return Phrase(fmt.Sprintf(format, escaped...))
}

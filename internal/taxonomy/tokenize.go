package taxonomy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type token struct {
	word  string
	start int
	end   int
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#'
}

// tokenize splits text into lowercase word tokens and single-rune punctuation
// tokens, keeping byte offsets into the original text. "+" and "#" belong to
// words so that names like C++ and C# survive. A "." between two word runes
// also stays inside the word, so node.js and setup.py are single tokens while
// a full stop after a word is still punctuation.
func tokenize(text string) []token {
	tokens := make([]token, 0, len(text)/5)
	start := -1

	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, token{word: strings.ToLower(text[start:end]), start: start, end: end})
			start = -1
		}
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case r == '.' && start >= 0 && wordRuneAt(text, i+size):
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			tokens = append(tokens, token{word: strings.ToLower(text[i : i+size]), start: i, end: i + size})
		}
		i += size
	}
	flush(len(text))

	return tokens
}

func wordRuneAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

func tokenWords(tokens []token) []string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.word
	}
	return words
}

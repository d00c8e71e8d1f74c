// FILE: lixenwraith/lconfig/tokenizer.go
package lconfig

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/agilira/go-errors"
)

// TokenKind classifies what the tokenizer found.
type TokenKind int

const (
	// TokenWord is a parameter or value word
	TokenWord TokenKind = iota
	// TokenHeaderEnd marks the "##" terminator; the reader is left at the start of the next line
	TokenHeaderEnd
	// TokenEOF means the stream ended
	TokenEOF
)

// Token is a single word read from a header.
type Token struct {
	Kind TokenKind
	Text string
	Line int // 1-based line on which the word started
}

// Tokenizer splits an LCONFIG header into words.
// Whitespace separates words, double quotes group them and preserve case,
// '#' starts a comment running to the end of the line and "##" ends the header.
// ASCII letters outside quotes are folded to lower case; quoted bytes are kept as read.
type Tokenizer struct {
	r       *bufio.Reader
	maxWord int
	line    int
}

// NewTokenizer wraps r. A maxWord of zero or less selects DefaultMaxWordLength.
func NewTokenizer(r io.Reader, maxWord int) *Tokenizer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	if maxWord <= 0 {
		maxWord = DefaultMaxWordLength
	}
	return &Tokenizer{r: br, maxWord: maxWord, line: 1}
}

// Reader exposes the underlying reader, positioned after the last token read.
func (t *Tokenizer) Reader() *bufio.Reader {
	return t.r
}

// Line returns the current 1-based line number.
func (t *Tokenizer) Line() int {
	return t.line
}

// Next returns the next token.
func (t *Tokenizer) Next() (Token, error) {
	var word strings.Builder
	quoted := false
	inWord := false // a quoted empty string is still a word
	start := t.line

	for {
		c, err := t.r.ReadByte()
		if err == io.EOF {
			if quoted {
				return Token{}, errors.New(ErrCodeSyntax, "unterminated quoted string").
					WithContext("line", start)
			}
			if inWord {
				return Token{Kind: TokenWord, Text: word.String(), Line: start}, nil
			}
			return Token{Kind: TokenEOF, Line: t.line}, nil
		}
		if err != nil {
			return Token{}, errors.Wrap(err, ErrCodeIO, "failed to read header")
		}

		if quoted {
			if c == '"' {
				quoted = false
				continue
			}
			if c == '\n' {
				t.line++
			}
			if err := t.append(&word, c, start); err != nil {
				return Token{}, err
			}
			continue
		}

		switch {
		case c == '"':
			if !inWord {
				start = t.line
			}
			quoted = true
			inWord = true

		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			if inWord {
				// Leave the newline for the next call so line counts stay right
				if c == '\n' {
					_ = t.r.UnreadByte()
				}
				return Token{Kind: TokenWord, Text: word.String(), Line: start}, nil
			}
			if c == '\n' {
				t.line++
			}

		case c == '#':
			if inWord {
				_ = t.r.UnreadByte()
				return Token{Kind: TokenWord, Text: word.String(), Line: start}, nil
			}
			next, err := t.r.ReadByte()
			if err == nil && next == '#' {
				at := t.line
				if err := t.skipLine(); err != nil {
					return Token{}, err
				}
				return Token{Kind: TokenHeaderEnd, Line: at}, nil
			}
			if err == nil {
				_ = t.r.UnreadByte()
			}
			if err := t.skipLine(); err != nil {
				return Token{}, err
			}

		default:
			if !inWord {
				start = t.line
				inWord = true
			}
			if err := t.append(&word, lowerASCII(c), start); err != nil {
				return Token{}, err
			}
		}
	}
}

// append adds c to the word while enforcing the byte cap.
func (t *Tokenizer) append(word *strings.Builder, c byte, line int) error {
	word.WriteByte(c)
	if word.Len() > t.maxWord {
		return errors.New(ErrCodeSyntax, fmt.Sprintf("word exceeds %d bytes", t.maxWord)).
			WithContext("line", line)
	}
	return nil
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// skipLine discards everything up to and including the next newline.
func (t *Tokenizer) skipLine() error {
	_, err := t.r.ReadString('\n')
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, ErrCodeIO, "failed to read header")
	}
	t.line++
	return nil
}

// NextPair reads a parameter and its value.
// ok is false when the header is exhausted; end reports whether that happened at "##".
func (t *Tokenizer) NextPair() (param, value Token, ok bool, end bool, err error) {
	param, err = t.Next()
	if err != nil {
		return Token{}, Token{}, false, false, err
	}
	if param.Kind != TokenWord {
		return Token{}, Token{}, false, param.Kind == TokenHeaderEnd, nil
	}

	value, err = t.Next()
	if err != nil {
		return Token{}, Token{}, false, false, err
	}
	if value.Kind != TokenWord {
		return Token{}, Token{}, false, false, errors.New(ErrCodeIncompletePair, "incomplete parameter-value pair").
			WithContext("param", param.Text).
			WithContext("line", param.Line)
	}
	return param, value, true, false, nil
}

package parser

import (
	"fmt"

	"pdfmerge/ir/raw"
	"pdfmerge/scanner"
)

type tokenReader struct {
	sc     scanner.Scanner
	pushed []scanner.Token
}

func newTokenReader(sc scanner.Scanner) *tokenReader {
	return &tokenReader{sc: sc}
}

func (tr *tokenReader) next() (scanner.Token, error) {
	if n := len(tr.pushed); n > 0 {
		tok := tr.pushed[n-1]
		tr.pushed = tr.pushed[:n-1]
		return tok, nil
	}
	return tr.sc.Next()
}

func (tr *tokenReader) unread(tok scanner.Token) {
	tr.pushed = append(tr.pushed, tok)
}

func (tr *tokenReader) setStreamLengthHint(n int64) {
	tr.sc.SetNextStreamLength(n)
}

func parseObject(tr *tokenReader) (raw.Object, error) {
	tok, err := tr.next()
	if err != nil {
		return nil, err
	}
	return parseFromToken(tr, tok)
}

func parseFromToken(tr *tokenReader, tok scanner.Token) (raw.Object, error) {
	switch tok.Type {
	case scanner.TokenName:
		return raw.Name(tok.Str), nil
	case scanner.TokenNumber:
		if tok.IsInt {
			return raw.Int(tok.Int), nil
		}
		return raw.Real(tok.Float), nil
	case scanner.TokenBoolean:
		return raw.Bool(tok.Bool), nil
	case scanner.TokenNull:
		return raw.NullObj{}, nil
	case scanner.TokenString:
		s := raw.Str(tok.Bytes)
		s.Hex = tok.IsHex
		return s, nil
	case scanner.TokenRef:
		return raw.Ref(int(tok.Int), tok.Gen), nil
	case scanner.TokenArray:
		return parseArray(tr)
	case scanner.TokenDict:
		return parseDict(tr)
	default:
		return nil, fmt.Errorf("unexpected token %q", tok.Str)
	}
}

func parseArray(tr *tokenReader) (raw.Object, error) {
	arr := raw.Array()
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == "]" {
			return arr, nil
		}
		item, err := parseFromToken(tr, tok)
		if err != nil {
			return nil, err
		}
		arr.Append(item)
	}
}

func parseDict(tr *tokenReader) (*raw.DictObj, error) {
	dict := raw.Dict()
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == ">>" {
			return dict, nil
		}
		if tok.Type != scanner.TokenName {
			return nil, fmt.Errorf("dictionary key must be a name, got %q", tok.Str)
		}
		val, err := parseObject(tr)
		if err != nil {
			return nil, err
		}
		dict.Set(tok.Str, val)
	}
}

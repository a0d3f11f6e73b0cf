package xref

// Minimal token-to-object parsing, enough for trailer dictionaries and
// xref stream headers. The parser package carries the full loader.

import (
	"errors"

	"pdfmerge/ir/raw"
	"pdfmerge/scanner"
)

type tokenReader struct {
	s   scanner.Scanner
	buf []scanner.Token
}

func newTokenReader(s scanner.Scanner) *tokenReader { return &tokenReader{s: s} }

func (r *tokenReader) next() (scanner.Token, error) {
	if l := len(r.buf); l > 0 {
		t := r.buf[l-1]
		r.buf = r.buf[:l-1]
		return t, nil
	}
	return r.s.Next()
}

func (r *tokenReader) unread(tok scanner.Token) { r.buf = append(r.buf, tok) }

// expectObjHeader consumes "<num> <gen> obj".
func expectObjHeader(tr *tokenReader) error {
	numTok, err := tr.next()
	if err != nil {
		return err
	}
	if numTok.Type != scanner.TokenNumber || !numTok.IsInt {
		return errors.New("expected object number")
	}
	genTok, err := tr.next()
	if err != nil {
		return err
	}
	if genTok.Type != scanner.TokenNumber || !genTok.IsInt {
		return errors.New("expected generation number")
	}
	objTok, err := tr.next()
	if err != nil {
		return err
	}
	if objTok.Type != scanner.TokenKeyword || objTok.Str != "obj" {
		return errors.New("expected obj keyword")
	}
	return nil
}

func parseObject(tr *tokenReader) (raw.Object, error) {
	tok, err := tr.next()
	if err != nil {
		return nil, err
	}
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
		return raw.StringObj{Bytes: tok.Bytes, Hex: tok.IsHex}, nil
	case scanner.TokenRef:
		return raw.Ref(int(tok.Int), tok.Gen), nil
	case scanner.TokenArray:
		arr := &raw.ArrayObj{}
		for {
			t, err := tr.next()
			if err != nil {
				return nil, err
			}
			if t.Type == scanner.TokenKeyword && t.Str == "]" {
				return arr, nil
			}
			tr.unread(t)
			item, err := parseObject(tr)
			if err != nil {
				return nil, err
			}
			arr.Append(item)
		}
	case scanner.TokenDict:
		d := raw.Dict()
		for {
			t, err := tr.next()
			if err != nil {
				return nil, err
			}
			if t.Type == scanner.TokenKeyword && t.Str == ">>" {
				return d, nil
			}
			if t.Type != scanner.TokenName {
				return nil, errors.New("expected name key in dictionary")
			}
			val, err := parseObject(tr)
			if err != nil {
				return nil, err
			}
			d.Set(t.Str, val)
		}
	}
	return nil, errors.New("unexpected token")
}

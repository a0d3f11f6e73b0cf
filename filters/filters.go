// Package filters decodes PDF stream filters. The merge engine only ever
// decodes structural streams (xref streams, object streams); page content
// is carried through verbatim.
package filters

import (
	"bytes"
	"compress/flate"
	"compress/lzw"
	"encoding/ascii85"
	"encoding/hex"
	"errors"
	"io"

	"pdfmerge/ir/raw"
)

type Decoder interface {
	Name() string
	Decode(input []byte, params *raw.DictObj) ([]byte, error)
}

type Limits struct {
	MaxDecompressedSize int64
}

// Pipeline applies a filter chain in order.
type Pipeline struct {
	decoders []Decoder
	limits   Limits
}

func NewPipeline(decoders []Decoder, limits Limits) *Pipeline {
	return &Pipeline{decoders: decoders, limits: limits}
}

// NewDefault returns a pipeline with every decoder the merger needs.
func NewDefault(limits Limits) *Pipeline {
	return NewPipeline([]Decoder{
		NewFlateDecoder(),
		NewLZWDecoder(),
		NewASCIIHexDecoder(),
		NewASCII85Decoder(),
		NewRunLengthDecoder(),
	}, limits)
}

func (p *Pipeline) findDecoder(name string) Decoder {
	for _, d := range p.decoders {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

func (p *Pipeline) Decode(input []byte, filterNames []string, params []*raw.DictObj) ([]byte, error) {
	data := input
	for i, name := range filterNames {
		dec := p.findDecoder(name)
		if dec == nil {
			return nil, errors.New("unknown filter: " + name)
		}
		var param *raw.DictObj
		if i < len(params) {
			param = params[i]
		}
		out, err := dec.Decode(data, param)
		if err != nil {
			return nil, err
		}
		if p.limits.MaxDecompressedSize > 0 && int64(len(out)) > p.limits.MaxDecompressedSize {
			return nil, errors.New("decompressed size exceeds limit")
		}
		data = out
	}
	return data, nil
}

// ExtractFilters reads Filter and DecodeParms entries from a stream
// dictionary, normalizing the scalar and array forms.
func ExtractFilters(dict *raw.DictObj) ([]string, []*raw.DictObj) {
	var names []string
	var params []*raw.DictObj

	filterObj, ok := dict.Get("Filter")
	if !ok {
		return names, params
	}
	switch f := filterObj.(type) {
	case raw.NameObj:
		names = append(names, f.Val)
	case *raw.ArrayObj:
		for _, item := range f.Items {
			if n, ok := item.(raw.NameObj); ok {
				names = append(names, n.Val)
			}
		}
	}
	if len(names) == 0 {
		return names, params
	}
	pObj, ok := dict.Get("DecodeParms")
	if !ok {
		pObj, ok = dict.Get("DP")
	}
	if ok {
		switch p := pObj.(type) {
		case *raw.DictObj:
			params = append(params, p)
		case *raw.ArrayObj:
			for _, item := range p.Items {
				d, _ := item.(*raw.DictObj)
				params = append(params, d)
			}
		}
	}
	return names, params
}

type flateDecoder struct{}

func NewFlateDecoder() Decoder    { return flateDecoder{} }
func (flateDecoder) Name() string { return "FlateDecode" }

func (flateDecoder) Decode(in []byte, params *raw.DictObj) ([]byte, error) {
	r, err := zlibOrFlateReader(in)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, err
	}
	return applyPredictor(out.Bytes(), params)
}

// zlibOrFlateReader tolerates both the zlib wrapper PDF producers emit and
// bare deflate data.
func zlibOrFlateReader(in []byte) (io.ReadCloser, error) {
	if len(in) >= 2 && in[0]&0x0F == 8 && (uint16(in[0])<<8|uint16(in[1]))%31 == 0 {
		// zlib header: skip the 2-byte wrapper, checksum trails the data
		return flate.NewReader(bytes.NewReader(in[2:])), nil
	}
	return flate.NewReader(bytes.NewReader(in)), nil
}

type lzwDecoder struct{}

func NewLZWDecoder() Decoder    { return lzwDecoder{} }
func (lzwDecoder) Name() string { return "LZWDecode" }

func (lzwDecoder) Decode(in []byte, params *raw.DictObj) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(in), lzw.MSB, 8)
	defer r.Close()
	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil && out.Len() == 0 {
		return nil, err
	}
	return applyPredictor(out.Bytes(), params)
}

type asciiHexDecoder struct{}

func NewASCIIHexDecoder() Decoder    { return asciiHexDecoder{} }
func (asciiHexDecoder) Name() string { return "ASCIIHexDecode" }

func (asciiHexDecoder) Decode(in []byte, _ *raw.DictObj) ([]byte, error) {
	trimmed := in
	if i := bytes.IndexByte(trimmed, '>'); i >= 0 {
		trimmed = trimmed[:i]
	}
	compact := make([]byte, 0, len(trimmed))
	for _, c := range trimmed {
		if c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20 {
			continue
		}
		compact = append(compact, c)
	}
	if len(compact)%2 == 1 { // odd count pads with zero per spec
		compact = append(compact, '0')
	}
	out := make([]byte, hex.DecodedLen(len(compact)))
	n, err := hex.Decode(out, compact)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

type ascii85Decoder struct{}

func NewASCII85Decoder() Decoder    { return ascii85Decoder{} }
func (ascii85Decoder) Name() string { return "ASCII85Decode" }

func (ascii85Decoder) Decode(in []byte, _ *raw.DictObj) ([]byte, error) {
	trimmed := bytes.TrimSpace(in)
	if bytes.HasPrefix(trimmed, []byte("<~")) {
		trimmed = trimmed[2:]
	}
	if i := bytes.Index(trimmed, []byte("~>")); i >= 0 {
		trimmed = trimmed[:i]
	}
	out := make([]byte, len(trimmed)*4/5+4)
	n, _, err := ascii85.Decode(out, trimmed, true)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

type runLengthDecoder struct{}

func NewRunLengthDecoder() Decoder    { return runLengthDecoder{} }
func (runLengthDecoder) Name() string { return "RunLengthDecode" }

func (runLengthDecoder) Decode(in []byte, _ *raw.DictObj) ([]byte, error) {
	var out bytes.Buffer
	i := 0
	for i < len(in) {
		l := int(in[i])
		i++
		switch {
		case l == 128: // EOD
			return out.Bytes(), nil
		case l < 128:
			if i+l+1 > len(in) {
				return nil, errors.New("run length literal overruns input")
			}
			out.Write(in[i : i+l+1])
			i += l + 1
		default:
			if i >= len(in) {
				return nil, errors.New("run length repeat overruns input")
			}
			out.Write(bytes.Repeat(in[i:i+1], 257-l))
			i++
		}
	}
	return out.Bytes(), nil
}

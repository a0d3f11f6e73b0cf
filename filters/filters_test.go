package filters_test

import (
	"bytes"
	"compress/zlib"
	"testing"

	"pdfmerge/filters"
	"pdfmerge/ir/raw"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestFlateRoundTrip(t *testing.T) {
	want := []byte("stream payload with some repetition repetition repetition")
	p := filters.NewDefault(filters.Limits{})
	got, err := p.Decode(deflate(t, want), []string{"FlateDecode"}, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q", got)
	}
}

func TestFlateWithPNGUpPredictor(t *testing.T) {
	// two rows of 4 bytes, PNG Up filter (type 2)
	rows := [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}}
	var encoded bytes.Buffer
	prev := make([]byte, 4)
	for _, row := range rows {
		encoded.WriteByte(2)
		for i, b := range row {
			encoded.WriteByte(b - prev[i])
		}
		prev = row
	}
	params := raw.Dict()
	params.Set("Predictor", raw.Int(12))
	params.Set("Columns", raw.Int(4))

	p := filters.NewDefault(filters.Limits{})
	got, err := p.Decode(deflate(t, encoded.Bytes()), []string{"FlateDecode"}, []*raw.DictObj{params})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % d, want % d", got, want)
	}
}

func TestASCIIHexDecode(t *testing.T) {
	p := filters.NewDefault(filters.Limits{})
	got, err := p.Decode([]byte("48 65 6C 6C 6F>"), []string{"ASCIIHexDecode"}, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != "Hello" {
		t.Fatalf("got %q", got)
	}
}

func TestRunLengthDecode(t *testing.T) {
	p := filters.NewDefault(filters.Limits{})
	// literal "ab", then 'c' repeated 3 times, then EOD
	in := []byte{1, 'a', 'b', 254, 'c', 128}
	got, err := p.Decode(in, []string{"RunLengthDecode"}, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != "abccc" {
		t.Fatalf("got %q", got)
	}
}

func TestUnknownFilter(t *testing.T) {
	p := filters.NewDefault(filters.Limits{})
	if _, err := p.Decode(nil, []string{"DCTDecode"}, nil); err == nil {
		t.Fatal("expected unknown filter error")
	}
}

func TestDecompressedSizeLimit(t *testing.T) {
	big := bytes.Repeat([]byte{'x'}, 1024)
	p := filters.NewDefault(filters.Limits{MaxDecompressedSize: 64})
	if _, err := p.Decode(deflate(t, big), []string{"FlateDecode"}, nil); err == nil {
		t.Fatal("expected size limit error")
	}
}

func TestExtractFilters(t *testing.T) {
	dict := raw.Dict()
	dict.Set("Filter", raw.Name("FlateDecode"))
	parms := raw.Dict()
	parms.Set("Predictor", raw.Int(12))
	dict.Set("DecodeParms", parms)

	names, params := filters.ExtractFilters(dict)
	if len(names) != 1 || names[0] != "FlateDecode" {
		t.Fatalf("names: %v", names)
	}
	if len(params) != 1 || params[0] == nil {
		t.Fatalf("params: %v", params)
	}

	dict2 := raw.Dict()
	dict2.Set("Filter", raw.Array(raw.Name("ASCIIHexDecode"), raw.Name("FlateDecode")))
	names2, _ := filters.ExtractFilters(dict2)
	if len(names2) != 2 || names2[1] != "FlateDecode" {
		t.Fatalf("names2: %v", names2)
	}
}

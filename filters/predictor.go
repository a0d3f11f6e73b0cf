package filters

import (
	"errors"

	"pdfmerge/ir/raw"
)

// applyPredictor undoes the Predictor declared in DecodeParms. Xref streams
// in the wild almost always use PNG Up (/Predictor 12).
func applyPredictor(data []byte, params *raw.DictObj) ([]byte, error) {
	if params == nil {
		return data, nil
	}
	predictor := dictInt(params, "Predictor", 1)
	if predictor <= 1 {
		return data, nil
	}
	colors := dictInt(params, "Colors", 1)
	bpc := dictInt(params, "BitsPerComponent", 8)
	columns := dictInt(params, "Columns", 1)

	bpp := (colors*bpc + 7) / 8 // bytes per pixel
	rowLen := (colors*bpc*columns + 7) / 8
	if rowLen <= 0 || bpp <= 0 {
		return nil, errors.New("invalid predictor parameters")
	}

	if predictor == 2 {
		return applyTIFFPredictor(data, bpp, rowLen)
	}
	return applyPNGPredictor(data, bpp, rowLen)
}

func applyTIFFPredictor(data []byte, bpp, rowLen int) ([]byte, error) {
	if len(data)%rowLen != 0 {
		return nil, errors.New("predictor: data not a whole number of rows")
	}
	out := append([]byte(nil), data...)
	for r := 0; r < len(out); r += rowLen {
		for i := bpp; i < rowLen; i++ {
			out[r+i] += out[r+i-bpp]
		}
	}
	return out, nil
}

func applyPNGPredictor(data []byte, bpp, rowLen int) ([]byte, error) {
	// each row is prefixed with a per-row filter type byte
	stride := rowLen + 1
	if len(data)%stride != 0 {
		return nil, errors.New("predictor: data not a whole number of rows")
	}
	rows := len(data) / stride
	out := make([]byte, 0, rows*rowLen)
	prev := make([]byte, rowLen)
	cur := make([]byte, rowLen)
	for r := 0; r < rows; r++ {
		ft := data[r*stride]
		copy(cur, data[r*stride+1:(r+1)*stride])
		switch ft {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < rowLen; i++ {
				cur[i] += cur[i-bpp]
			}
		case 2: // Up
			for i := 0; i < rowLen; i++ {
				cur[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < rowLen; i++ {
				var left byte
				if i >= bpp {
					left = cur[i-bpp]
				}
				cur[i] += byte((int(left) + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowLen; i++ {
				var left, upLeft byte
				if i >= bpp {
					left = cur[i-bpp]
					upLeft = prev[i-bpp]
				}
				cur[i] += paeth(left, prev[i], upLeft)
			}
		default:
			return nil, errors.New("predictor: unknown PNG filter type")
		}
		out = append(out, cur...)
		prev, cur = cur, prev
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func dictInt(d *raw.DictObj, key string, def int) int {
	if v, ok := d.GetInt(key); ok {
		return int(v)
	}
	return def
}

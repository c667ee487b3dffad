package tagmap

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeFrame decodes a camera frame payload. Two formats are accepted:
// raw JSON, and zlib-compressed JSON (cameras on constrained links batch
// and compress their observation streams).
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame payload")
	}

	jsonBytes := data
	if data[0] != '{' {
		inflated, err := inflateZlib(data)
		if err != nil {
			return nil, fmt.Errorf("unknown frame format: not JSON or zlib-compressed JSON")
		}
		jsonBytes = inflated
	}

	var frame Frame
	if err := json.Unmarshal(jsonBytes, &frame); err != nil {
		return nil, fmt.Errorf("parsing frame JSON: %w", err)
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("frame has invalid dimensions %dx%d", frame.Width, frame.Height)
	}
	return &frame, nil
}

// DecodeFix decodes a robot location fix payload (raw JSON).
func DecodeFix(data []byte) (*LocationFix, error) {
	var fix LocationFix
	if err := json.Unmarshal(data, &fix); err != nil {
		return nil, fmt.Errorf("parsing location fix JSON: %w", err)
	}
	return &fix, nil
}

// inflateZlib decompresses zlib data.
func inflateZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening zlib stream: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflating zlib stream: %w", err)
	}
	return out, nil
}

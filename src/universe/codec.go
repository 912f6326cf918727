package universe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//gridDocument is the persisted form of a grid
//only the current buffer is stored, the next buffer and the generation are transient
type gridDocument struct {
	X             *int     `json:"x"`
	Y             *int     `json:"y"`
	DefaultValue  *bool    `json:"defaultValue"`
	CurrentMatrix [][]bool `json:"currentMatrix"`
}

//gridInput is gridDocument as read back, pointers tell the missing and null values apart
type gridInput struct {
	X             *int      `json:"x"`
	Y             *int      `json:"y"`
	DefaultValue  *bool     `json:"defaultValue"`
	CurrentMatrix [][]*bool `json:"currentMatrix"`
}

//Encode serializes the grid dimensions, default value and current buffer as indented JSON
//currentMatrix holds W rows of H values
func Encode(g *Grid) ([]byte, error) {
	var b bytes.Buffer
	if err := EncodeTo(&b, g); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

//EncodeTo writes the serialized grid to w
func EncodeTo(w io.Writer, g *Grid) error {
	width, height := g.Dimensions()
	dv := g.DefaultValue()
	doc := gridDocument{
		X:             &width,
		Y:             &height,
		DefaultValue:  &dv,
		CurrentMatrix: g.Snapshot(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode grid: %w", err)
	}
	return nil
}

//Decode builds a new grid from its serialized form, the next buffer is filled with the default value
//trailing data, null cells and any mismatch between the declared dimensions and the matrix are ErrMalformedData
func Decode(data []byte) (*Grid, error) {
	return DecodeFrom(bytes.NewReader(data))
}

//DecodeFrom reads a serialized grid from r, r must hold exactly one document
func DecodeFrom(r io.Reader) (*Grid, error) {
	var doc gridInput
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after the document", ErrMalformedData)
	}
	if doc.X == nil || doc.Y == nil || doc.DefaultValue == nil || doc.CurrentMatrix == nil {
		return nil, fmt.Errorf("%w: missing required field", ErrMalformedData)
	}
	width, height := *doc.X, *doc.Y
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrMalformedData, width, height)
	}
	if len(doc.CurrentMatrix) != width {
		return nil, fmt.Errorf("%w: %d rows, declared x=%d", ErrMalformedData, len(doc.CurrentMatrix), width)
	}
	for x, row := range doc.CurrentMatrix {
		if len(row) != height {
			return nil, fmt.Errorf("%w: row %d has %d values, declared y=%d", ErrMalformedData, x, len(row), height)
		}
		for y, c := range row {
			if c == nil {
				return nil, fmt.Errorf("%w: cell %d,%d is null", ErrMalformedData, x, y)
			}
		}
	}

	g, err := NewGrid(width, height, *doc.DefaultValue)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	for x, row := range doc.CurrentMatrix {
		for y, c := range row {
			g.current[g.index(x, y)] = *c
		}
	}
	return g, nil
}

//SaveFile writes the serialized grid to the file at path
func SaveFile(path string, g *Grid) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save grid to %s: %w", path, err)
	}
	return nil
}

//LoadFile reads a grid from the file at path
func LoadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load grid from %s: %w", path, err)
	}
	defer f.Close()
	g, err := DecodeFrom(f)
	if err != nil {
		return nil, fmt.Errorf("load grid from %s: %w", path, err)
	}
	return g, nil
}

package classifier

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Binary model format, little-endian:
//
//	magic    [4]byte  "FCLR"
//	version  uint16
//	dim      uint32
//	bias     float64
//	weights  dim × float64
var codecMagic = [4]byte{'F', 'C', 'L', 'R'}

const codecVersion = 1

// Encode serializes a fitted LogisticRegression to the binary model format.
func Encode(m *LogisticRegression) ([]byte, error) {
	if m.Weights == nil {
		return nil, ErrNotFitted
	}
	var buf bytes.Buffer
	buf.Write(codecMagic[:])
	if err := binary.Write(&buf, binary.LittleEndian, uint16(codecVersion)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(m.Weights))); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, m.Bias); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, m.Weights); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses the binary model format produced by Encode.
func Decode(data []byte) (*LogisticRegression, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("cannot read model header: %w", err)
	}
	if magic != codecMagic {
		return nil, fmt.Errorf("not a framecull model file (magic %q)", magic[:])
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("cannot read model version: %w", err)
	}
	if version != codecVersion {
		return nil, fmt.Errorf("unsupported model version %d", version)
	}

	var dim uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("cannot read model dim: %w", err)
	}
	if dim == 0 || dim > 1<<16 {
		return nil, fmt.Errorf("invalid model dim %d", dim)
	}

	m := NewLogisticRegression()
	if err := binary.Read(r, binary.LittleEndian, &m.Bias); err != nil {
		return nil, fmt.Errorf("cannot read model bias: %w", err)
	}
	m.Weights = make([]float64, dim)
	if err := binary.Read(r, binary.LittleEndian, m.Weights); err != nil {
		return nil, fmt.Errorf("cannot read model weights: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("trailing bytes after model weights: %d", r.Len())
	}
	return m, nil
}

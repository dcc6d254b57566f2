// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/topical/core"
)

// Matrix wire format: varint row count, varint column count, then
// rows*cols float32 values in row-major order. The matrix must be
// rectangular; embeddings and projections always are.

// raw.Float32 always occupies four bytes on the wire.
const rawFloat32Size = 4

// MarshalMatrix serializes a Matrix to bytes.
func MarshalMatrix(m core.Matrix) ([]byte, error) {
	rows := len(m)
	cols := 0
	if rows > 0 {
		cols = len(m[0])
	}

	size := varint.Int.Size(rows) + varint.Int.Size(cols)
	for _, row := range m {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: want %d, row has %d", ErrRaggedMatrix, cols, len(row))
		}
		for _, v := range row {
			size += raw.Float32.Size(v)
		}
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(rows, buf)
	n += varint.Int.Marshal(cols, buf[n:])
	for _, row := range m {
		for _, v := range row {
			n += raw.Float32.Marshal(v, buf[n:])
		}
	}
	return buf, nil
}

// UnmarshalMatrix deserializes a Matrix from bytes.
func UnmarshalMatrix(data []byte) (core.Matrix, error) {
	rows, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	cols, n2, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += n2
	if rows < 0 || cols < 0 {
		return nil, ErrSerializationFailed
	}

	// Validate the header against the payload before allocating. A corrupt
	// header must surface as an error, not exhaust memory.
	payload := len(data) - n
	if cols == 0 {
		if rows != 0 || payload != 0 {
			return nil, fmt.Errorf("%w: header %dx%d with %d payload bytes", ErrSerializationFailed, rows, cols, payload)
		}
		return core.Matrix{}, nil
	}
	rowBytes := 0
	if cols <= payload/rawFloat32Size {
		rowBytes = cols * rawFloat32Size
	}
	if rowBytes == 0 || payload%rowBytes != 0 || payload/rowBytes != rows {
		return nil, fmt.Errorf("%w: header %dx%d with %d payload bytes", ErrSerializationFailed, rows, cols, payload)
	}

	m := make(core.Matrix, rows)
	for i := 0; i < rows; i++ {
		row := make([]float32, cols)
		for j := 0; j < cols; j++ {
			v, n3, err := raw.Float32.Unmarshal(data[n:])
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrTruncatedData, err)
			}
			row[j] = v
			n += n3
		}
		m[i] = row
	}
	return m, nil
}

// Labels wire format: varint count, then one varint per label. Varint
// zigzag encoding keeps the negative noise sentinel compact.

// MarshalLabels serializes a Labels array to bytes.
func MarshalLabels(labels core.Labels) []byte {
	size := varint.Int.Size(len(labels))
	for _, lbl := range labels {
		size += varint.Int.Size(lbl)
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(len(labels), buf)
	for _, lbl := range labels {
		n += varint.Int.Marshal(lbl, buf[n:])
	}
	return buf
}

// UnmarshalLabels deserializes a Labels array from bytes.
func UnmarshalLabels(data []byte) (core.Labels, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if count < 0 {
		return nil, ErrSerializationFailed
	}
	// Each label is at least one byte, so a count beyond the remaining
	// payload can only come from a corrupt header.
	if count > len(data)-n {
		return nil, fmt.Errorf("%w: label count %d exceeds %d payload bytes", ErrSerializationFailed, count, len(data)-n)
	}

	labels := make(core.Labels, count)
	for i := 0; i < count; i++ {
		v, n2, err := varint.Int.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTruncatedData, err)
		}
		labels[i] = v
		n += n2
	}
	return labels, nil
}

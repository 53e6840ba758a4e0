// Copyright 2026 Qabase Authors
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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/qabase/qabase/core"
)

// Hand-written MUS serialization for stored entries. The layout is:
// id, question, answer, source, embedding (length-prefixed float32s),
// inserted-at as a UnixMicro timestamp.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	v := uint64(id)
	buf := make([]byte, varint.Uint64.Size(v))
	varint.Uint64.Marshal(v, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalEntry serializes a StoredEntry to bytes.
func MarshalEntry(entry *core.StoredEntry) []byte {
	buf := make([]byte, sizeEntry(entry))
	n := varint.Uint64.Marshal(uint64(entry.Id), buf)
	n += ord.String.Marshal(entry.Record.Question, buf[n:])
	n += ord.String.Marshal(entry.Record.Answer, buf[n:])
	n += ord.String.Marshal(entry.Record.Source, buf[n:])
	n += varint.Int.Marshal(len(entry.Embedding), buf[n:])
	for _, f := range entry.Embedding {
		n += raw.Float32.Marshal(f, buf[n:])
	}
	varint.Int64.Marshal(entry.InsertedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalEntry deserializes a StoredEntry from bytes.
func UnmarshalEntry(data []byte) (*core.StoredEntry, error) {
	entry := &core.StoredEntry{}

	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	entry.Id = core.ID(id)

	var m int
	if entry.Record.Question, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: question: %w", ErrSerializationFailed, err)
	}
	n += m
	if entry.Record.Answer, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: answer: %w", ErrSerializationFailed, err)
	}
	n += m
	if entry.Record.Source, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: source: %w", ErrSerializationFailed, err)
	}
	n += m

	length, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: embedding length: %w", ErrSerializationFailed, err)
	}
	n += m
	if length < 0 {
		return nil, fmt.Errorf("%w: negative embedding length %d", ErrSerializationFailed, length)
	}
	if length > 0 {
		entry.Embedding = make([]float32, length)
		for i := 0; i < length; i++ {
			if entry.Embedding[i], m, err = raw.Float32.Unmarshal(data[n:]); err != nil {
				return nil, fmt.Errorf("%w: embedding[%d]: %w", ErrSerializationFailed, i, err)
			}
			n += m
		}
	}

	micros, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: inserted-at: %w", ErrSerializationFailed, err)
	}
	entry.InsertedAt = time.UnixMicro(micros).UTC()

	return entry, nil
}

func sizeEntry(entry *core.StoredEntry) int {
	size := varint.Uint64.Size(uint64(entry.Id))
	size += ord.String.Size(entry.Record.Question)
	size += ord.String.Size(entry.Record.Answer)
	size += ord.String.Size(entry.Record.Source)
	size += varint.Int.Size(len(entry.Embedding))
	for _, f := range entry.Embedding {
		size += raw.Float32.Size(f)
	}
	size += varint.Int64.Size(entry.InsertedAt.UnixMicro())
	return size
}

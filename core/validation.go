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


package core

import (
	"fmt"
	"strings"
)

// ValidateQARecord validates a QARecord according to domain rules.
//
// Validation rules:
//   - Question must not be empty after trimming
//   - Answer must not be empty after trimming
//
// NOT validated:
//   - Source (an empty provenance label is tolerated, callers default it)
func ValidateQARecord(record *QARecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidQARecord)
	}

	if strings.TrimSpace(record.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQARecord, ErrEmptyQuestion)
	}

	if strings.TrimSpace(record.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQARecord, ErrEmptyAnswer)
	}

	return nil
}

// ValidateStoredEntry validates a StoredEntry before it is written.
//
// Validation rules:
//   - the embedded QARecord must be valid
//   - the embedding vector must be non-empty
//
// NOT validated:
//   - ID (0 is valid before a sequence assigns one)
func ValidateStoredEntry(entry *StoredEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidQARecord)
	}

	if err := ValidateQARecord(&entry.Record); err != nil {
		return err
	}

	if len(entry.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidQARecord, ErrEmptyEmbedding)
	}

	return nil
}

// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Writer writes records as newline delimited JSON.
type Writer struct {
	mu        sync.Mutex
	output    io.Writer
	encoder   *json.Encoder
	count     int
	closeFunc func() error
}

// NewWriter creates an NDJSON writer over w. Closing it does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		output:  w,
		encoder: json.NewEncoder(w),
	}
}

// NewFileWriter creates or truncates filename, making its parent directory
// when missing. The caller must Close the writer.
func NewFileWriter(filename string) (*Writer, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &Writer{
		output:    file,
		encoder:   json.NewEncoder(file),
		closeFunc: file.Close,
	}, nil
}

// Write encodes record on its own line.
func (w *Writer) Write(record any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the file behind a writer from NewFileWriter. It is safe to
// call more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc == nil {
		return nil
	}
	err := w.closeFunc()
	w.closeFunc = nil
	return err
}

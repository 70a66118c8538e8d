// Package storage persists one record collection per file, one encrypted
// serialized record per line, in sequence-number order. Only this package
// touches the backing files; services own validation and identity.
package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Cipher encrypts and decrypts single text records. Implemented by
// crypto.Codec; kept as an interface so tests can substitute a no-op cipher.
type Cipher interface {
	Encrypt(plainText string) (string, error)
	Decrypt(cipherText string) (string, error)
}

// LineStore is the durable store for one collection of T. Line positions are
// derived from sequence numbers (position = seq - 1), which assumes dense,
// 1-based sequences with no gaps; nothing here reclaims or reorders lines.
type LineStore[T any] struct {
	mu     sync.Mutex
	path   string
	cipher Cipher
}

func NewLineStore[T any](path string, cipher Cipher) *LineStore[T] {
	return &LineStore[T]{path: path, cipher: cipher}
}

// LoadAll reads the whole collection. Each line is decrypted and unmarshaled
// independently; a line failing either step is skipped so that one corrupt
// record never makes the rest of the collection unavailable. A missing file
// is an empty collection, not an error.
func (s *LineStore[T]) LoadAll(_ context.Context) ([]*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	var records []*T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		plain, err := s.cipher.Decrypt(line)
		if err != nil {
			continue
		}
		rec := new(T)
		if err := json.Unmarshal([]byte(plain), rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return records, nil
}

// Append serializes, encrypts and writes rec as a new final line, leaving
// existing lines verbatim.
func (s *LineStore[T]) Append(_ context.Context, rec *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.encode(rec)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append %s: %w", s.path, err)
	}
	return nil
}

// RewriteAt replaces exactly the line at the zero-based position with rec's
// new encrypted content, keeping every other line byte-identical. There is no
// partial-write recovery; a crash mid-rewrite can corrupt the file.
func (s *LineStore[T]) RewriteAt(_ context.Context, position int, rec *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if position < 0 || position >= len(lines) {
		return fmt.Errorf("rewrite %s: position %d out of range (%d lines)", s.path, position, len(lines))
	}
	line, err := s.encode(rec)
	if err != nil {
		return err
	}
	lines[position] = line

	if err := os.WriteFile(s.path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return fmt.Errorf("rewrite %s: %w", s.path, err)
	}
	return nil
}

func (s *LineStore[T]) encode(rec *T) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	line, err := s.cipher.Encrypt(string(raw))
	if err != nil {
		return "", fmt.Errorf("encrypt record: %w", err)
	}
	return line, nil
}

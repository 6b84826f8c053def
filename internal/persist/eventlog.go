package persist

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// SplitLog appends split records to a zstd-compressed JSON Lines file, one
// file per run.
type SplitLog struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// SplitLogPath is where a run's split log lives under dir.
func SplitLogPath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("splits-%s.jsonl.zst", runID))
}

func NewSplitLog(dir, runID string) (*SplitLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("split log dir: %w", err)
	}
	path := SplitLogPath(dir, runID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open split log: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("split log encoder: %w", err)
	}
	return &SplitLog{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

func (l *SplitLog) Path() string { return l.path }

// WriteSplits appends records and flushes them through the compressor.
func (l *SplitLog) WriteSplits(_ context.Context, records []SplitRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return errors.New("split log closed")
	}

	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := l.w.Write(b); err != nil {
			return err
		}
		if err := l.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := l.w.Flush(); err != nil {
		return err
	}
	return l.enc.Flush()
}

func (l *SplitLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err1 error
	if l.w != nil {
		err1 = l.w.Flush()
	}
	if l.enc != nil {
		if err := l.enc.Close(); err1 == nil {
			err1 = err
		}
		l.enc = nil
	}
	if l.f != nil {
		if err := l.f.Close(); err1 == nil {
			err1 = err
		}
		l.f = nil
	}
	l.w = nil
	return err1
}

// ReadSplitLog decodes every record in a split log file.
func ReadSplitLog(path string) ([]SplitRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return decodeSplitLines(dec)
}

func decodeSplitLines(r io.Reader) ([]SplitRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var out []SplitRecord
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec SplitRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("split log line %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

// Package inbox supplies raw SMS batches to the sync engine.
//
// The engine itself never touches a radio or a content provider; it consumes
// whatever the host exported. FileSource reads the JSON dump format the
// Android host writes (an array of address/body/date objects, date in epoch
// milliseconds).
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/masudbs-23/hisab-app/internal/sms"
)

// DefaultMaxCount bounds one fetch to the most recent messages, mirroring the
// host's inbox read limit.
const DefaultMaxCount = 100

// ErrNoConsent means SMS access has not been granted. Callers treat it as a
// zero-message batch, not a failure.
var ErrNoConsent = errors.New("sms access not granted")

type fileMessage struct {
	Address string `json:"address"`
	Body    string `json:"body"`
	Date    int64  `json:"date"`
}

// FileSource reads messages from a JSON inbox dump. A missing file means the
// host never exported one, which only happens without SMS consent.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Messages(ctx context.Context, maxCount int) ([]sms.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return nil, ErrNoConsent
	}
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoConsent
	}
	if err != nil {
		return nil, fmt.Errorf("read inbox file: %w", err)
	}

	var raw []fileMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode inbox file: %w", err)
	}

	// Most recent first, then cap, as the host's inbox query does.
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].Date > raw[j].Date })
	if maxCount > 0 && len(raw) > maxCount {
		raw = raw[:maxCount]
	}

	out := make([]sms.RawMessage, len(raw))
	for i, m := range raw {
		out[i] = sms.RawMessage{
			Sender: m.Address,
			Body:   m.Body,
			Date:   time.UnixMilli(m.Date).UTC(),
		}
	}
	return out, nil
}

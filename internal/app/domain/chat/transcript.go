package chat

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/pkg/cache"
)

// TranscriptIdleTTL is how long an untouched transcript is kept.
const TranscriptIdleTTL = 2 * time.Hour

type transcript struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

// TranscriptStore keeps per-session chat history in memory only.
type TranscriptStore struct {
	cache *cache.UnifiedCache[*transcript]
}

func NewTranscriptStore(ttl time.Duration, logger *zap.Logger) *TranscriptStore {
	return &TranscriptStore{
		cache: cache.NewUnifiedCache[*transcript](ttl, "chat_transcripts", logger),
	}
}

func (s *TranscriptStore) Append(sessionID string, msg models.ChatMessage) {
	t := s.cache.GetOrCreate(sessionID, func() *transcript { return &transcript{} })
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
	s.cache.Touch(sessionID)
}

// History returns a copy of the session's messages, oldest first.
func (s *TranscriptStore) History(sessionID string) []models.ChatMessage {
	t, ok := s.cache.Get(sessionID)
	if !ok {
		return []models.ChatMessage{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

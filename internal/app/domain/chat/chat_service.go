package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/app/observability/metrics"
)

// pdfNotice is what the transcript shows when the backend answered with a document.
const pdfNotice = "Your itinerary PDF is ready."

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Send(ctx context.Context, sessionID, message string) (*models.ChatResult, error)
	PDF(ctx context.Context) ([]byte, error)
	History(sessionID string) []models.ChatMessage
}

type ServiceImpl struct {
	logger      *zap.Logger
	backend     Backend
	transcripts *TranscriptStore
	now         func() time.Time
}

func NewService(backend Backend, transcripts *TranscriptStore, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		backend:     backend,
		transcripts: transcripts,
		now:         time.Now,
	}
}

// Send forwards one user message. The user's line is kept in the transcript
// even when the backend fails.
func (s *ServiceImpl) Send(ctx context.Context, sessionID, message string) (*models.ChatResult, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "Send")
	defer span.End()

	text := strings.TrimSpace(message)
	if text == "" {
		span.SetStatus(codes.Error, "Empty message")
		return nil, fmt.Errorf("message is required: %w", models.ErrBadRequest)
	}

	l := s.logger.With(zap.String("method", "Send"), zap.Int("length", len(text)))
	l.Debug("Forwarding chat message")

	s.transcripts.Append(sessionID, models.ChatMessage{Sender: models.SenderUser, Text: text, Timestamp: s.now()})

	result, err := s.backend.Send(ctx, text)
	if err != nil {
		l.Error("Chat backend call failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Backend call failed")
		s.count(ctx, "error")
		return nil, fmt.Errorf("chat backend: %w", err)
	}

	reply := pdfNotice
	kind := "pdf"
	if !result.IsPDF() {
		kind = "text"
		if result.Reply != nil {
			reply = result.Reply.Reply
		}
	}
	s.transcripts.Append(sessionID, models.ChatMessage{Sender: models.SenderAssistant, Text: reply, Timestamp: s.now()})
	s.count(ctx, kind)

	span.SetAttributes(attribute.String("chat.reply.kind", kind))
	span.SetStatus(codes.Ok, "Reply received")
	l.Info("Chat reply received", zap.String("kind", kind))
	return result, nil
}

func (s *ServiceImpl) PDF(ctx context.Context) ([]byte, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "PDF")
	defer span.End()

	pdf, err := s.backend.FetchPDF(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "PDF fetch failed")
		return nil, fmt.Errorf("fetching itinerary pdf: %w", err)
	}
	span.SetAttributes(attribute.Int("pdf.bytes", len(pdf)))
	return pdf, nil
}

func (s *ServiceImpl) History(sessionID string) []models.ChatMessage {
	return s.transcripts.History(sessionID)
}

func (s *ServiceImpl) count(ctx context.Context, outcome string) {
	metrics.Get().ChatRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

package audit

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// LogSink appends audit entries as structured log lines. The default sink for
// embedded deployments; operators ship the log stream to their retention
// system of choice.
type LogSink struct {
	log hclog.Logger
}

// NewLogSink creates a log-backed audit sink.
func NewLogSink(log hclog.Logger) *LogSink {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &LogSink{log: log.Named("audit")}
}

// Append writes the entry at info level.
func (s *LogSink) Append(ctx context.Context, entry Entry) error {
	s.log.Info("audit entry",
		"id", entry.ID.String(),
		"action", entry.Action,
		"actor", entry.ActorID,
		"document_id", entry.DocumentID,
		"document_uuid", entry.DocumentUUID.String(),
		"before", entry.Before,
		"after", entry.After,
		"timestamp", entry.Timestamp,
	)
	return nil
}

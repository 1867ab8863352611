package audit

import (
	"fmt"
	"sync"
)

var (
	globalWriter Writer = NopWriter{}
	globalMu     sync.RWMutex
	enabled      bool
)

// Init installs w as the process-wide audit writer. A nil writer disables auditing.
func Init(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if w == nil {
		globalWriter = NopWriter{}
		enabled = false
		return nil
	}
	globalWriter = w
	enabled = true
	return nil
}

// InitFile installs a FileWriter for path. An empty path disables auditing.
func InitFile(path string) error {
	if path == "" {
		return Init(nil)
	}
	w, err := NewFileWriter(path)
	if err != nil {
		return err
	}
	return Init(w)
}

// Close closes the global writer and disables auditing.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	err := globalWriter.Close()
	globalWriter = NopWriter{}
	enabled = false
	return err
}

// Enabled reports whether an audit writer is installed.
func Enabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return enabled
}

// Log writes an event to the global writer.
func Log(event *Event) error {
	globalMu.RLock()
	w := globalWriter
	globalMu.RUnlock()

	return w.Write(event)
}

// MustLog writes an event and wraps any failure so the caller can fail
// the audited operation with it.
func MustLog(event *Event) error {
	if err := Log(event); err != nil {
		return fmt.Errorf("audit log failed: %w", err)
	}
	return nil
}

// Inspection describes one interpretation for LogInspection.
type Inspection struct {
	Input       []byte
	Path        string
	ContentType string
	Mode        string
	Source      string
	RequestID   string
	Actor       *Actor // nil keeps the local user
	Err         error  // non-nil records a failure
}

// LogInspection records a CMS_INSPECT event.
func LogInspection(in Inspection) error {
	result := ResultSuccess
	reason := ""
	if in.Err != nil {
		result = ResultFailure
		reason = in.Err.Error()
	}

	event := NewEvent(EventCMSInspect, result).
		WithObject(Object{
			Type:   "cms",
			Digest: Digest(in.Input),
			Size:   len(in.Input),
			Path:   in.Path,
		}).
		WithContext(Context{
			ContentType: in.ContentType,
			Mode:        in.Mode,
			Source:      in.Source,
			RequestID:   in.RequestID,
			Reason:      reason,
		})
	if in.Actor != nil {
		event.WithActor(*in.Actor)
	}

	return MustLog(event)
}

// LogChainVerified records a successful VerifyChain run over path.
func LogChainVerified(path string, count int) error {
	event := NewEvent(EventChainVerified, ResultSuccess).
		WithObject(Object{Type: "audit_log", Path: path}).
		WithContext(Context{Source: "cli", Reason: fmt.Sprintf("%d events verified", count)})
	return MustLog(event)
}

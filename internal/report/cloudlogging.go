package report

import (
	"context"
	"fmt"

	"cloud.google.com/go/logging"
	"google.golang.org/api/option"

	"github.com/reillywatson/firebase-deploy/internal/deploy"
)

// LogName is the Cloud Logging log that receives deploy reports.
const LogName = "firebase-deploy"

type entryLogger interface {
	Log(e logging.Entry)
	Flush() error
}

// CloudLoggingSink records reports in the project's Cloud Logging.
type CloudLoggingSink struct {
	logger entryLogger
	labels map[string]string
	close  func() error
}

// NewCloudLoggingSink opens a logging client for projectID authenticated with
// the service-account file at credentialsFile.
func NewCloudLoggingSink(ctx context.Context, projectID, credentialsFile string, labels map[string]string) (*CloudLoggingSink, error) {
	client, err := logging.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, deploy.Wrap(deploy.KindReporting, "open cloud logging", fmt.Errorf("failed to create logging client: %w", err))
	}
	return &CloudLoggingSink{
		logger: client.Logger(LogName),
		labels: labels,
		close:  client.Close,
	}, nil
}

func (s *CloudLoggingSink) Emit(_ context.Context, r deploy.Report) error {
	severity := logging.Info
	if r.Conclusion != deploy.ConclusionSuccess {
		severity = logging.Error
	}

	s.logger.Log(logging.Entry{
		Severity: severity,
		Labels:   s.labels,
		Payload:  r,
	})
	if err := s.logger.Flush(); err != nil {
		return deploy.Wrap(deploy.KindReporting, "write cloud logging entry", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (s *CloudLoggingSink) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

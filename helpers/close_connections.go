package helpers

import (
	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
)

// HandleCloseConnections closes the optional redis & nats connections.
func HandleCloseConnections(appCnf *config.AppConfig) {
	if appCnf == nil {
		return
	}

	if appCnf.NatsConn != nil {
		// drain will flush pending mirror events
		if err := appCnf.NatsConn.Drain(); err != nil && appCnf.Logger != nil {
			appCnf.Logger.WithError(err).Warnln("failed to drain nats connection")
		}
	}

	if appCnf.RDS != nil {
		_ = appCnf.RDS.Close()
	}
}

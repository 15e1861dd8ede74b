package factory

import (
	"strings"
	"time"

	"github.com/mynaparrot/plugnmeet-speech-relay/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// NewNatsConnection connects to NATS when nats_info is configured.
// The final event mirror is disabled otherwise.
func NewNatsConnection(appCnf *config.AppConfig) error {
	info := appCnf.NatsInfo
	if info == nil {
		appCnf.Logger.Infoln("nats_info not configured, event mirror disabled")
		return nil
	}

	opts := []nats.Option{
		nats.Name("speech-relay"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				appCnf.Logger.WithError(err).Warnln("disconnected from NATS")
			}
		}),
	}
	if info.User != "" {
		opts = append(opts, nats.UserInfo(info.User, info.Password))
	}

	nc, err := nats.Connect(strings.Join(info.NatsUrls, ","), opts...)
	if err != nil {
		return err
	}
	appCnf.NatsConn = nc

	appCnf.Logger.WithFields(logrus.Fields{
		"version": nc.ConnectedServerVersion(),
		"address": nc.ConnectedAddr(),
	}).Info("successfully connected to NATS server")

	return nil
}

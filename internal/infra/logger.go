// README: zap logger construction keyed by application environment.
package infra

import "go.uber.org/zap"

// NewLogger returns a production JSON logger for env "production" and a
// development console logger otherwise.
func NewLogger(env, service string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if env == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return log.Named(service), nil
}

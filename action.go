package valutatrade

import (
	"go.uber.org/zap"
)

// logFielder is implemented by results that add details to the FINISH line.
type logFielder interface {
	LogFields() []zap.Field
}

// runAction logs the START and FINISH of one use-case around fn.
func runAction[T any](logger *zap.Logger, action string, fields []zap.Field, fn func() (T, error)) (T, error) {
	logger.Info("START "+action, fields...)

	v, err := fn()
	done := append([]zap.Field(nil), fields...)
	if err != nil {
		done = append(done,
			zap.String("result", "ERROR"),
			zap.String("error_type", ErrorKind(err)),
			zap.String("error_message", err.Error()),
		)
		logger.Error("FINISH "+action, done...)
		return v, err
	}

	done = append(done, zap.String("result", "OK"))
	if lf, ok := any(v).(logFielder); ok {
		done = append(done, lf.LogFields()...)
	}
	logger.Info("FINISH "+action, done...)
	return v, nil
}

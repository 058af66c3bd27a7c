package log

import "go.uber.org/zap"

// L is the process-wide logger. Init must be called once at startup;
// before that L is a nop logger so packages can log unconditionally.
var L = zap.NewNop()

func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	L = l
	return l, nil
}

func Sync() { _ = L.Sync() }

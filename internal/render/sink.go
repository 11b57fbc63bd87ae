package render

import "errors"

// MultiSink fans a frame out to several sinks. Every sink is written even if
// an earlier one fails; the errors are joined.
type MultiSink []Sink

func (m MultiSink) Write(f Frame) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

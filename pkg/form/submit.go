package form

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SubmitFunc receives a copy of the values of a valid form.
type SubmitFunc func(ctx context.Context, values map[string]any) error

type submitResult struct {
	err   error
	panic any
	set   bool
}

// Submit validates the form and, when every field passes, calls handler once.
//
// A second Submit while one is pending returns ErrSubmitInProgress without
// calling handler. Validation failures return a *ValidationError. Handler
// errors are wrapped in ErrSubmitFailed. IsSubmitting is reset on every exit
// path, including a handler panic, which is re-raised afterwards.
func (s *Session) Submit(ctx context.Context, handler SubmitFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if handler == nil {
		return fmt.Errorf("form: submit handler is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		s.logger.Debug("submit rejected, already in progress")
		return ErrSubmitInProgress
	}
	if err := s.validateAllLocked(); err != nil {
		s.submitFailed = true
		s.mu.Unlock()
		s.logger.Debug("submit blocked by validation", zap.Error(err))
		return err
	}
	s.submitting = true
	s.submitCount++
	values := cloneValues(s.st.values)
	s.mu.Unlock()

	started := s.cfg.now()
	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	err := s.runHandler(ctx, handler, values)
	duration := s.cfg.now().Sub(started)

	s.mu.Lock()
	s.submitted = err == nil
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("submit failed", zap.Duration("duration", duration), zap.Error(err))
		return err
	}
	s.logger.Info("submit completed", zap.Duration("duration", duration))
	return nil
}

func (s *Session) runHandler(ctx context.Context, handler SubmitFunc, values map[string]any) error {
	if s.cfg.submitTimeout <= 0 {
		return wrapHandlerErr(s.callHandler(ctx, handler, values))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.submitTimeout)
	defer cancel()

	done := make(chan submitResult, 1)
	go func() {
		var res submitResult
		defer func() {
			if r := recover(); r != nil {
				res = submitResult{panic: r, set: true}
			}
			done <- res
		}()
		res = submitResult{err: handler(ctx, values)}
	}()

	select {
	case res := <-done:
		if res.set {
			s.logger.Error("submit handler panicked", zap.Any("panic", res.panic))
			panic(res.panic)
		}
		return wrapHandlerErr(res.err)
	case <-ctx.Done():
		s.logger.Warn("submit handler timed out", zap.Duration("timeout", s.cfg.submitTimeout))
		return fmt.Errorf("form: submit: %w", ctx.Err())
	}
}

func (s *Session) callHandler(ctx context.Context, handler SubmitFunc, values map[string]any) error {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("submit handler panicked", zap.Any("panic", r))
			panic(r)
		}
	}()
	return handler(ctx, values)
}

func wrapHandlerErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
}

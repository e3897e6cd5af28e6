package notify

import (
	"context"
	"errors"

	"github.com/ikkim/bookcity-backend/internal/app/service"
)

// Fanout delivers a sweep result to every notifier and joins their errors.
type Fanout []service.SweepNotifier

func (f Fanout) NotifySweep(ctx context.Context, result *service.SweepResult) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifySweep(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

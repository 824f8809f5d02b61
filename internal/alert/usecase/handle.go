package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kofi-alerts/internal/alert"
)

func (uc *implUseCase) Handle(ctx context.Context, a alert.Alert) error {
	uc.logAlert(ctx, a)
	if a.Type() == alert.TypeConfig {
		return nil
	}

	var err error
	if uc.redis != nil {
		err = uc.publish(ctx, a)
	}
	if uc.discord != nil {
		uc.announceAsync(a)
	}
	return err
}

func (uc *implUseCase) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (uc *implUseCase) logAlert(ctx context.Context, a alert.Alert) {
	switch v := a.(type) {
	case alert.ConfigAlert:
		uc.l.Infof(ctx, "alert.usecase.Handle: configuration reset")
	case alert.DonationAlert:
		uc.l.Infof(ctx, "alert.usecase.Handle: donation of %s from %s", v.Amount.StringFixed(2), v.Username)
	case alert.GoalAlert:
		uc.l.Infof(ctx, "alert.usecase.Handle: goal %q at %.0f%%", v.Goal.Title, v.Goal.ProgressPercentage)
	case alert.ActivityAlert:
		b := v.Activity.Base()
		uc.l.Infof(ctx, "alert.usecase.Handle: %s activity %s from %s (%s %s)",
			v.Activity.Kind(), b.TransactionID, b.UserName, b.Amount, b.Currency)
	}
}

func (uc *implUseCase) publish(ctx context.Context, a alert.Alert) error {
	env := alert.Envelope{
		ID:         uc.newID(),
		PageID:     uc.pageID,
		ReceivedAt: uc.now().UTC(),
		Alert:      a,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("alert.usecase.publish: marshal envelope: %w", err)
	}

	var errs []error
	if err := uc.redis.Publish(ctx, Channel(uc.pageID), b); err != nil {
		uc.l.Errorf(ctx, "alert.usecase.publish.Publish: %v", err)
		errs = append(errs, fmt.Errorf("publish: %w", err))
	}
	if err := uc.redis.Set(ctx, LastAlertKey(uc.pageID), b, uc.lastAlertTTL); err != nil {
		uc.l.Errorf(ctx, "alert.usecase.publish.Set: %v", err)
		errs = append(errs, fmt.Errorf("store last alert: %w", err))
	}
	return errors.Join(errs...)
}

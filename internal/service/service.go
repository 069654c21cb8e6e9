package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/pkg/outbox"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
	"github.com/tuanvumaihuynh/storefront/pkg/ptr"
	"github.com/tuanvumaihuynh/storefront/pkg/validator"
)

// validate returns apperr.ValidationErr wrapping every violated rule of params.
func validate(v validator.Validator, params any) error {
	if err := v.Validate(params); err != nil {
		if validator.IsValidationError(err) {
			return apperr.ValidationErr.WrapParent(err)
		}
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// enqueue stores ev in the outbox of store, carrying the trace context and
// correlation id of ctx.
func enqueue(ctx context.Context, store repository.Store, topic, key string, ev any) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := store.OutboxMsgs().CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.HeadersFromContext(ctx),
		Payload:      payload,
		PartitionKey: ptr.New(key),
	}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

func mapListErr(err error) error {
	var fieldErr *paging.InvalidFieldError
	if errors.As(err, &fieldErr) {
		return apperr.InvalidSortFieldErr.WithMsgf("%s", fieldErr.Error()).WrapParent(err)
	}
	return err
}

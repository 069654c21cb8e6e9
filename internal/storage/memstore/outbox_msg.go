package memstore

import (
	"context"
	"maps"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/repository"
)

type outboxMsgRepository struct {
	s *Store
}

func (r *outboxMsgRepository) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	defer r.s.lock()()

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	st := r.s.state()
	st.outbox = append(st.outbox, outboxMsg{
		id:           id,
		topic:        params.Topic,
		headers:      maps.Clone(params.Headers),
		payload:      append([]byte(nil), params.Payload...),
		partitionKey: params.PartitionKey,
	})
	return nil
}

func (r *outboxMsgRepository) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	defer r.s.lock()()

	results := []repository.ListUnprocessedOutboxMsgsResult{}
	for _, msg := range r.s.state().outbox {
		if len(results) >= int(params.BatchSize) {
			break
		}
		if msg.processed {
			continue
		}

		headers := maps.Clone(msg.headers)
		if headers == nil {
			headers = map[string]string{}
		}
		results = append(results, repository.ListUnprocessedOutboxMsgsResult{
			ID:           msg.id,
			Topic:        msg.topic,
			Headers:      headers,
			Payload:      append([]byte(nil), msg.payload...),
			PartitionKey: msg.partitionKey,
		})
	}
	return results, nil
}

func (r *outboxMsgRepository) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	defer r.s.lock()()

	updates := make(map[uuid.UUID]*string, len(params.Items))
	for _, item := range params.Items {
		updates[item.ID] = item.Error
	}

	st := r.s.state()
	for i, msg := range st.outbox {
		msgErr, ok := updates[msg.id]
		if !ok {
			continue
		}
		msg.processed = true
		msg.err = msgErr
		st.outbox[i] = msg
	}
	return nil
}

package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.InvalidBodyErr.WithMsgf("invalid request body: %s", err).WrapParent(err)
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.InvalidParamErr.WithMsgf("invalid id %q", raw).WrapParent(err)
	}
	return id, nil
}

// bindQuery binds an optional form-style query parameter into dst, which
// must be a pointer to a pointer.
func bindQuery(query url.Values, name string, dst any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, query, dst); err != nil {
		return apperr.InvalidParamErr.WithMsgf("invalid query parameter %s", name).WrapParent(err)
	}
	return nil
}

type pageParams struct {
	PageNumber *int
	PageSize   *int
	SortBy     *string
	Ascending  *bool
}

func pagingQuery(r *http.Request) (paging.Query, error) {
	query := r.URL.Query()

	var p pageParams
	for name, dst := range map[string]any{
		"pageNumber": &p.PageNumber,
		"pageSize":   &p.PageSize,
		"sortBy":     &p.SortBy,
		"ascending":  &p.Ascending,
	} {
		if err := bindQuery(query, name, dst); err != nil {
			return paging.Query{}, err
		}
	}

	q := paging.Query{
		PageNumber: paging.DefaultPageNumber,
		PageSize:   paging.DefaultPageSize,
	}
	if p.PageNumber != nil {
		q.PageNumber = *p.PageNumber
	}
	if p.PageSize != nil {
		q.PageSize = *p.PageSize
	}
	if p.SortBy != nil {
		q.SortBy = *p.SortBy
	}
	if p.Ascending != nil {
		q.Ascending = *p.Ascending
	}

	return q, nil
}

// periodQuery binds startDate and endDate. A missing bound is returned as
// the zero time and rejected by the period validation.
func periodQuery(r *http.Request) (start, end time.Time, err error) {
	query := r.URL.Query()

	var startDate, endDate *time.Time
	if err := bindQuery(query, "startDate", &startDate); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := bindQuery(query, "endDate", &endDate); err != nil {
		return time.Time{}, time.Time{}, err
	}

	if startDate != nil {
		start = *startDate
	}
	if endDate != nil {
		end = *endDate
	}
	return start, end, nil
}

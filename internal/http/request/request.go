// Package request разбирает параметры HTTP-запроса: идентификаторы из пути,
// пагинацию и необязательные фильтры из строки запроса.
package request

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/wealth-management/internal/models"
)

// ErrInvalidParam параметр запроса не является допустимым числом.
var ErrInvalidParam = errors.New("invalid parameter")

// ID читает положительный идентификатор из параметра пути name.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, name, raw)
	}
	return id, nil
}

// Page читает skip и limit. Отсутствующие значения берутся по умолчанию,
// слишком большой limit обрезается в models.Page.Normalize.
func Page(r *http.Request) (models.Page, error) {
	var page models.Page
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return page, fmt.Errorf("%w: skip=%q", ErrInvalidParam, raw)
		}
		page.Skip = skip
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return page, fmt.Errorf("%w: limit=%q", ErrInvalidParam, raw)
		}
		page.Limit = limit
	}
	return page.Normalize(), nil
}

// OptionalInt64 читает необязательный числовой фильтр key. Пустое значение даёт nil.
func OptionalInt64(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, raw)
	}
	return &v, nil
}

// OptionalFloat64 читает необязательное конечное число key. Пустое значение даёт nil.
func OptionalFloat64(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, raw)
	}
	return &v, nil
}

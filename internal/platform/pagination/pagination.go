// Package pagination implementa paginación por número de página:
// ?page=N&page_size=M, con respuesta {count, next, previous, results}.
package pagination

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	PageParam     = "page"
	PageSizeParam = "page_size"

	DefaultPageSize    = 2
	DefaultMaxPageSize = 100
)

var ErrInvalidPage = errors.New("invalid page")

type Config struct {
	PageSize    int
	MaxPageSize int
}

func (c Config) normalized() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = DefaultMaxPageSize
	}
	if c.PageSize > c.MaxPageSize {
		c.PageSize = c.MaxPageSize
	}
	return c
}

type Params struct {
	Page     int
	PageSize int
}

func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }
func (p Params) Limit() int  { return p.PageSize }

// FromQuery lee page y page_size.
// page no numérico o < 1 => ErrInvalidPage. page_size inválido => default; se recorta al máximo.
func (c Config) FromQuery(q url.Values) (Params, error) {
	c = c.normalized()
	p := Params{Page: 1, PageSize: c.PageSize}

	if raw := strings.TrimSpace(q.Get(PageParam)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Params{}, ErrInvalidPage
		}
		p.Page = n
	}

	if raw := strings.TrimSpace(q.Get(PageSizeParam)); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PageSize = min(n, c.MaxPageSize)
		}
	}

	return p, nil
}

// Pages devuelve la cantidad de páginas; un resultado vacío tiene 1 página.
func Pages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Check valida que la página pedida exista para el total dado.
func (p Params) Check(total int) error {
	if p.Page < 1 || p.Page > Pages(total, p.PageSize) {
		return ErrInvalidPage
	}
	return nil
}

type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage arma la respuesta con links absolutos basados en el request.
func NewPage[T any](r *http.Request, p Params, total int, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	out := Page[T]{
		Count:   total,
		Results: results,
	}

	if p.Page < Pages(total, p.PageSize) {
		next := pageURL(r, p.Page+1)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(r, p.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(r *http.Request, page int) string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}

	q := r.URL.Query()
	if page <= 1 {
		q.Del(PageParam)
	} else {
		q.Set(PageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

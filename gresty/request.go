package gresty

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/glibtools/restyjson/serializer"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s\n[%s]\n%s", e.URL, e.Status, e.Body)
}

// GetJSON sends a GET and decodes the response body into T.
func GetJSON[T any](ctx context.Context, r *Resty, url string) (T, error) {
	return doJSON[T](r, r.Client().R().SetContext(ctx), http.MethodGet, url)
}

// PostJSON sends body as JSON and decodes the response body into T.
func PostJSON[T any](ctx context.Context, r *Resty, url string, body interface{}) (T, error) {
	req := r.Client().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	return doJSON[T](r, req, http.MethodPost, url)
}

func doJSON[T any](r *Resty, req *resty.Request, method, url string) (T, error) {
	var zero T
	resp, err := req.SetDoNotParseResponse(true).Execute(method, url)
	if err != nil {
		return zero, err
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	if !resp.IsSuccess() {
		data, _ := io.ReadAll(body)
		return zero, newStatusError(resp, string(data))
	}
	return serializer.DeserializeStream[T](r.JSONSerializer(), body)
}

func newStatusError(resp *resty.Response, body string) *StatusError {
	return &StatusError{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       body,
	}
}

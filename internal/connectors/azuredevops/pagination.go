package azuredevops

import (
	"context"
	"net/url"
	"strconv"
)

// listPage is a page of an Azure DevOps list response.
type listPage[T any] struct {
	Count int `json:"count"`
	Value []T `json:"value"`
}

// pageAll walks $skip/$top pages from offset zero and stops at the first
// page shorter than PageSize. No state is kept between calls.
func pageAll[T any](ctx context.Context, c *Client, operation, rawURL string, base url.Values) ([]T, error) {
	all := make([]T, 0)

	for skip := 0; ; skip += PageSize {
		select {
		case <-ctx.Done():
			return nil, wrapTransportError(ctx.Err(), operation)
		default:
		}

		query := url.Values{}
		for k, v := range base {
			query[k] = v
		}
		query.Set("$skip", strconv.Itoa(skip))
		query.Set("$top", strconv.Itoa(PageSize))

		var page listPage[T]
		if err := c.getJSON(ctx, operation, c.cfg.BulkTimeout, rawURL, query, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Value...)
		if len(page.Value) < PageSize {
			break
		}
	}

	return all, nil
}

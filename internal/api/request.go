package api

import (
	"net/url"
	"reflect"
	"strings"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters. Keys may repeat; the wire
// order matches the slice order.
type Query []Param

// Add appends a parameter and returns the extended query.
func (q Query) Add(key, value string) Query {
	return append(q, Param{Key: key, Value: value})
}

// Encode renders q as a URL query string without the leading '?'.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// RequestOptions describes the optional parts of a single API call.
type RequestOptions struct {
	// Params are sent as the URL query string. Nil or empty sends none.
	Params Query
	// Body is JSON-encoded as the request payload. Nil, including a nil
	// map, slice or pointer, sends no payload.
	Body any
	// APIVersion selects the /api/{version} segment. Empty means DefaultVersion.
	APIVersion string
}

func (o *RequestOptions) version() string {
	if o == nil || o.APIVersion == "" {
		return DefaultVersion
	}
	return o.APIVersion
}

// HasBody reports whether the descriptor carries a payload.
func (o *RequestOptions) HasBody() bool {
	if o == nil || o.Body == nil {
		return false
	}
	v := reflect.ValueOf(o.Body)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return !v.IsNil()
	}
	return true
}

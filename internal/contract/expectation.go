package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"apicontract/internal/apiclient"
	"apicontract/internal/core"
)

// Expectation is a single assertable condition checked against a response.
// Check returns an assertion_error when the condition does not hold and a
// shape_error when the body cannot be read the way the condition needs.
type Expectation interface {
	Describe() string
	Check(resp *apiclient.Response) error
}

type expectFunc struct {
	desc string
	fn   func(resp *apiclient.Response) error
}

func (e expectFunc) Describe() string { return e.desc }

func (e expectFunc) Check(resp *apiclient.Response) error { return e.fn(resp) }

// Expect builds an Expectation from a description and a check function.
func Expect(desc string, fn func(resp *apiclient.Response) error) Expectation {
	return expectFunc{desc: desc, fn: fn}
}

// StatusCode expects the response status to equal code.
func StatusCode(code int) Expectation {
	desc := fmt.Sprintf("status == %d", code)
	return Expect(desc, func(resp *apiclient.Response) error {
		if resp.StatusCode != code {
			return core.NewAssertionError(desc, fmt.Sprintf("got %d", resp.StatusCode))
		}
		return nil
	})
}

// ContentTypeJSON expects a JSON media type.
func ContentTypeJSON() Expectation {
	desc := "content-type is JSON"
	return Expect(desc, func(resp *apiclient.Response) error {
		if !resp.IsJSON() {
			return core.NewAssertionError(desc, fmt.Sprintf("got %q", resp.ContentType))
		}
		return nil
	})
}

// ContentType expects the media type to start with prefix, ignoring case and parameters.
func ContentType(prefix string) Expectation {
	desc := fmt.Sprintf("content-type starts with %q", prefix)
	return Expect(desc, func(resp *apiclient.Response) error {
		mediaType, _, err := mime.ParseMediaType(resp.ContentType)
		if err != nil || !strings.HasPrefix(mediaType, strings.ToLower(prefix)) {
			return core.NewAssertionError(desc, fmt.Sprintf("got %q", resp.ContentType))
		}
		return nil
	})
}

// BodyEquals expects the raw body to equal want exactly.
func BodyEquals(want string) Expectation {
	desc := fmt.Sprintf("body == %q", want)
	return Expect(desc, func(resp *apiclient.Response) error {
		if resp.Text() != want {
			return core.NewAssertionError(desc, fmt.Sprintf("got %q", truncate(resp.Text(), 120)))
		}
		return nil
	})
}

// JSONEquals expects the value at path to equal want. Numbers compare by value,
// so JSONEquals("id", 1) holds for a body of {"id":1.0}.
func JSONEquals(path string, want any) Expectation {
	desc := fmt.Sprintf("%s == %v", displayPath(path), want)
	return Expect(desc, func(resp *apiclient.Response) error {
		res, err := lookup(resp, path, desc)
		if err != nil {
			return err
		}
		return compareValue(desc, path, res, want)
	})
}

// JSONNotEmpty expects a non-null, non-empty string at path.
func JSONNotEmpty(path string) Expectation {
	desc := fmt.Sprintf("%s is a non-empty string", displayPath(path))
	return Expect(desc, func(resp *apiclient.Response) error {
		res, err := lookup(resp, path, desc)
		if err != nil {
			return err
		}
		switch res.Type {
		case gjson.Null:
			return core.NewAssertionError(desc, "value is null")
		case gjson.String:
			if res.Str == "" {
				return core.NewAssertionError(desc, "value is empty")
			}
			return nil
		default:
			return core.NewShapeError(desc, fmt.Sprintf("expected string, got %s", res.Type), nil)
		}
	})
}

// JSONContains expects the string at path to contain substr.
func JSONContains(path, substr string) Expectation {
	desc := fmt.Sprintf("%s contains %q", displayPath(path), substr)
	return Expect(desc, func(resp *apiclient.Response) error {
		res, err := lookup(resp, path, desc)
		if err != nil {
			return err
		}
		if res.Type != gjson.String {
			return core.NewShapeError(desc, fmt.Sprintf("expected string, got %s", res.Type), nil)
		}
		if !strings.Contains(res.Str, substr) {
			return core.NewAssertionError(desc, fmt.Sprintf("got %q", res.Str))
		}
		return nil
	})
}

// ArraySize expects the array at path to have exactly n elements.
func ArraySize(path string, n int) Expectation {
	desc := fmt.Sprintf("size(%s) == %d", displayPath(path), n)
	return arraySize(path, desc, func(size int) bool { return size == n })
}

// ArraySizeAtLeast expects the array at path to have at least n elements.
func ArraySizeAtLeast(path string, n int) Expectation {
	desc := fmt.Sprintf("size(%s) >= %d", displayPath(path), n)
	return arraySize(path, desc, func(size int) bool { return size >= n })
}

// ArraySizeGreaterThan expects the array at path to have more than n elements.
func ArraySizeGreaterThan(path string, n int) Expectation {
	desc := fmt.Sprintf("size(%s) > %d", displayPath(path), n)
	return arraySize(path, desc, func(size int) bool { return size > n })
}

func arraySize(path, desc string, ok func(int) bool) Expectation {
	return Expect(desc, func(resp *apiclient.Response) error {
		res, err := lookup(resp, path, desc)
		if err != nil {
			return err
		}
		if !res.IsArray() {
			return core.NewShapeError(desc, fmt.Sprintf("expected array, got %s", kind(res)), nil)
		}
		size := len(res.Array())
		if !ok(size) {
			return core.NewAssertionError(desc, fmt.Sprintf("got %d", size))
		}
		return nil
	})
}

// Decode unmarshals the body into T and runs check against it. Unmarshal
// failures are shape errors; a non-CheckError returned by check is reported
// as an assertion error.
func Decode[T any](desc string, check func(v T) error) Expectation {
	return Expect(desc, func(resp *apiclient.Response) error {
		var v T
		if err := json.Unmarshal(resp.Body, &v); err != nil {
			return core.NewShapeError(desc, "failed to decode body: "+err.Error(), err)
		}
		err := check(v)
		if err == nil {
			return nil
		}
		var ce *core.CheckError
		if errors.As(err, &ce) {
			return err
		}
		return core.NewAssertionError(desc, err.Error())
	})
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// gjsonPath converts a dotted path with bracket indexes ("[0].postId") into
// gjson syntax ("0.postId"). The empty path, "size()" and "@this" address the
// document root.
func gjsonPath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" || p == "size()" || p == "@this" || p == "$" {
		return "@this"
	}
	p = indexPattern.ReplaceAllString(p, ".$1")
	return strings.TrimPrefix(p, ".")
}

func displayPath(path string) string {
	if gjsonPath(path) == "@this" {
		return "body"
	}
	return path
}

func lookup(resp *apiclient.Response, path, desc string) (gjson.Result, error) {
	if !resp.ValidJSON() {
		return gjson.Result{}, core.NewShapeError(desc, "body is not valid JSON: "+truncate(resp.Text(), 80), nil)
	}
	res := gjson.GetBytes(resp.Body, gjsonPath(path))
	if !res.Exists() {
		return gjson.Result{}, core.NewShapeError(desc, fmt.Sprintf("field %s is missing", displayPath(path)), nil)
	}
	return res, nil
}

func compareValue(desc, path string, res gjson.Result, want any) error {
	mismatch := func() error {
		return core.NewAssertionError(desc, fmt.Sprintf("got %s", res.Raw))
	}
	wrongType := func(expected string) error {
		return core.NewShapeError(desc, fmt.Sprintf("expected %s at %s, got %s", expected, displayPath(path), kind(res)), nil)
	}

	switch w := want.(type) {
	case nil:
		if res.Type != gjson.Null {
			return mismatch()
		}
	case bool:
		if res.Type != gjson.True && res.Type != gjson.False {
			return wrongType("boolean")
		}
		if res.Bool() != w {
			return mismatch()
		}
	case string:
		if res.Type != gjson.String {
			return wrongType("string")
		}
		if res.Str != w {
			return mismatch()
		}
	case int:
		return compareNumber(res, float64(w), mismatch, wrongType)
	case int64:
		return compareNumber(res, float64(w), mismatch, wrongType)
	case float64:
		return compareNumber(res, w, mismatch, wrongType)
	default:
		return core.NewConfigError(fmt.Sprintf("%s: unsupported expected value type %T", desc, want), nil)
	}
	return nil
}

func compareNumber(res gjson.Result, want float64, mismatch func() error, wrongType func(string) error) error {
	if res.Type != gjson.Number {
		return wrongType("number")
	}
	if res.Num != want {
		return mismatch()
	}
	return nil
}

func kind(res gjson.Result) string {
	switch {
	case res.IsArray():
		return "array"
	case res.IsObject():
		return "object"
	default:
		return res.Type.String()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

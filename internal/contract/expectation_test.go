package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apicontract/internal/apiclient"
	"apicontract/internal/core"
)

func jsonResponse(status int, body string) *apiclient.Response {
	return &apiclient.Response{
		StatusCode:  status,
		ContentType: "application/json; charset=utf-8",
		Body:        []byte(body),
	}
}

const postBody = `{"userId":1,"id":1,"title":"sunt aut facere","body":"quia et suscipit"}`

const commentsBody = `[{"postId":1,"id":1,"name":"id labore","email":"Eliseo@gardner.biz","body":"laudantium"},` +
	`{"postId":1,"id":2,"name":"quo vero","email":"Jayne_Kuhic@sydney.com","body":"est natus"}]`

func TestExpectations(t *testing.T) {
	testCases := []struct {
		name    string
		exp     Expectation
		resp    *apiclient.Response
		errType core.ErrorType // empty means the expectation holds
	}{
		{name: "status match", exp: StatusCode(200), resp: jsonResponse(200, postBody)},
		{name: "status mismatch", exp: StatusCode(200), resp: jsonResponse(404, `{}`), errType: core.ErrorTypeAssertion},

		{name: "json content type", exp: ContentTypeJSON(), resp: jsonResponse(200, postBody)},
		{name: "html content type", exp: ContentTypeJSON(), resp: &apiclient.Response{ContentType: "text/html"}, errType: core.ErrorTypeAssertion},
		{name: "missing content type", exp: ContentTypeJSON(), resp: &apiclient.Response{}, errType: core.ErrorTypeAssertion},
		{name: "content type prefix", exp: ContentType("application/"), resp: jsonResponse(200, postBody)},

		{name: "body equals", exp: BodyEquals("{}"), resp: jsonResponse(404, `{}`)},
		{name: "body differs", exp: BodyEquals("{}"), resp: jsonResponse(404, `{"error":"x"}`), errType: core.ErrorTypeAssertion},
		{name: "body with newline differs", exp: BodyEquals("{}"), resp: jsonResponse(404, "{}\n"), errType: core.ErrorTypeAssertion},

		{name: "equals number", exp: JSONEquals("id", 1), resp: jsonResponse(200, postBody)},
		{name: "equals float number", exp: JSONEquals("id", 1), resp: jsonResponse(200, `{"id":1.0}`)},
		{name: "equals wrong number", exp: JSONEquals("userId", 2), resp: jsonResponse(200, postBody), errType: core.ErrorTypeAssertion},
		{name: "equals number given string", exp: JSONEquals("id", 1), resp: jsonResponse(200, `{"id":"1"}`), errType: core.ErrorTypeShape},
		{name: "equals missing field", exp: JSONEquals("id", 1), resp: jsonResponse(200, `{}`), errType: core.ErrorTypeShape},
		{name: "equals string", exp: JSONEquals("title", "sunt aut facere"), resp: jsonResponse(200, postBody)},
		{name: "equals bool", exp: JSONEquals("ok", true), resp: jsonResponse(200, `{"ok":true}`)},
		{name: "equals null", exp: JSONEquals("x", nil), resp: jsonResponse(200, `{"x":null}`)},
		{name: "equals indexed path", exp: JSONEquals("[0].postId", 1), resp: jsonResponse(200, commentsBody)},
		{name: "equals on invalid json", exp: JSONEquals("id", 1), resp: jsonResponse(200, `<html>`), errType: core.ErrorTypeShape},

		{name: "not empty", exp: JSONNotEmpty("title"), resp: jsonResponse(200, postBody)},
		{name: "not empty on empty", exp: JSONNotEmpty("title"), resp: jsonResponse(200, `{"title":""}`), errType: core.ErrorTypeAssertion},
		{name: "not empty on null", exp: JSONNotEmpty("title"), resp: jsonResponse(200, `{"title":null}`), errType: core.ErrorTypeAssertion},
		{name: "not empty on number", exp: JSONNotEmpty("title"), resp: jsonResponse(200, `{"title":5}`), errType: core.ErrorTypeShape},
		{name: "not empty missing", exp: JSONNotEmpty("title"), resp: jsonResponse(200, `{}`), errType: core.ErrorTypeShape},

		{name: "contains", exp: JSONContains("[0].email", "@"), resp: jsonResponse(200, commentsBody)},
		{name: "contains second element", exp: JSONContains("[1].email", "sydney"), resp: jsonResponse(200, commentsBody)},
		{name: "does not contain", exp: JSONContains("[0].email", "@"), resp: jsonResponse(200, `[{"email":"nobody"}]`), errType: core.ErrorTypeAssertion},
		{name: "contains out of range", exp: JSONContains("[5].email", "@"), resp: jsonResponse(200, commentsBody), errType: core.ErrorTypeShape},

		{name: "root size", exp: ArraySize("", 2), resp: jsonResponse(200, commentsBody)},
		{name: "size() alias", exp: ArraySize("size()", 0), resp: jsonResponse(200, `[]`)},
		{name: "size mismatch", exp: ArraySize("", 100), resp: jsonResponse(200, commentsBody), errType: core.ErrorTypeAssertion},
		{name: "size of object", exp: ArraySize("", 0), resp: jsonResponse(200, `{}`), errType: core.ErrorTypeShape},
		{name: "nested size", exp: ArraySize("items", 3), resp: jsonResponse(200, `{"items":[1,2,3]}`)},
		{name: "greater than zero", exp: ArraySizeGreaterThan("", 0), resp: jsonResponse(200, commentsBody)},
		{name: "greater than zero on empty", exp: ArraySizeGreaterThan("", 0), resp: jsonResponse(200, `[]`), errType: core.ErrorTypeAssertion},
		{name: "at least", exp: ArraySizeAtLeast("", 2), resp: jsonResponse(200, commentsBody)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.exp.Check(tc.resp)
			if tc.errType == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, core.IsType(err, tc.errType), "expected %s, got %v", tc.errType, err)
		})
	}
}

func TestExpectation_DescribeNamesCondition(t *testing.T) {
	assert.Equal(t, "status == 404", StatusCode(404).Describe())
	assert.Equal(t, "size(body) == 100", ArraySize("", 100).Describe())
	assert.Equal(t, `[0].email contains "@"`, JSONContains("[0].email", "@").Describe())
}

func TestExpectation_FailureNamesCondition(t *testing.T) {
	err := JSONEquals("userId", 1).Check(jsonResponse(200, `{"userId":7}`))

	var ce *core.CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "userId == 1", ce.Condition)
	assert.Contains(t, ce.Message, "7")
}

func TestDecode(t *testing.T) {
	userIsOne := Decode("post.userId == 1", func(p core.Post) error {
		if p.UserID != 1 {
			return errors.New("wrong user")
		}
		return nil
	})

	require.NoError(t, userIsOne.Check(jsonResponse(200, postBody)))

	err := userIsOne.Check(jsonResponse(200, `{"userId":2}`))
	assert.True(t, core.IsType(err, core.ErrorTypeAssertion))

	err = userIsOne.Check(jsonResponse(200, `{"userId":"one"}`))
	assert.True(t, core.IsType(err, core.ErrorTypeShape))

	passthrough := Decode("custom", func(core.Post) error {
		return core.NewShapeError("custom", "bad", nil)
	})
	assert.True(t, core.IsType(passthrough.Check(jsonResponse(200, postBody)), core.ErrorTypeShape))
}

func TestGjsonPath(t *testing.T) {
	testCases := map[string]string{
		"":              "@this",
		"size()":        "@this",
		"$":             "@this",
		"id":            "id",
		"[0].postId":    "0.postId",
		"items[2].name": "items.2.name",
		"[1][0]":        "1.0",
		"  title  ":     "title",
	}

	for in, want := range testCases {
		assert.Equal(t, want, gjsonPath(in), "input %q", in)
	}
}

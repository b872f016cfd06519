package contract

import (
	"errors"
	"fmt"
	"net/http"

	"apicontract/internal/core"
)

// Fixtures holds the dataset literals the default catalog asserts on. They
// describe the external service's current data and change when it does.
type Fixtures struct {
	ValidPostID       int    `mapstructure:"valid_post_id" yaml:"valid_post_id"`
	ValidPostUserID   int    `mapstructure:"valid_post_user_id" yaml:"valid_post_user_id"`
	InvalidPostID     int    `mapstructure:"invalid_post_id" yaml:"invalid_post_id"`
	ExpectedPostCount int    `mapstructure:"expected_post_count" yaml:"expected_post_count"`
	InvalidPath       string `mapstructure:"invalid_path" yaml:"invalid_path"`
}

// DefaultFixtures matches the public posts dataset.
func DefaultFixtures() Fixtures {
	return Fixtures{
		ValidPostID:       1,
		ValidPostUserID:   1,
		InvalidPostID:     9999,
		ExpectedPostCount: 100,
		InvalidPath:       "/invalid-endpoint",
	}
}

// Validate rejects fixtures the default catalog cannot be built from.
func (f Fixtures) Validate() error {
	switch {
	case f.ValidPostID <= 0:
		return core.NewConfigError("fixtures: valid_post_id must be positive", nil)
	case f.InvalidPostID == f.ValidPostID:
		return core.NewConfigError("fixtures: invalid_post_id must differ from valid_post_id", nil)
	case f.ExpectedPostCount < 0:
		return core.NewConfigError("fixtures: expected_post_count must not be negative", nil)
	case f.InvalidPath == "":
		return core.NewConfigError("fixtures: invalid_path is required", nil)
	}
	return nil
}

// Scenario names of the default catalog
const (
	ScenarioPostByID            = "post-by-id"
	ScenarioAllPosts            = "all-posts"
	ScenarioPostInvalidID       = "post-invalid-id"
	ScenarioInvalidEndpoint     = "invalid-endpoint"
	ScenarioPostComments        = "post-comments"
	ScenarioCommentsInvalidPost = "comments-invalid-post"
	ScenarioPostByIDTyped       = "post-by-id-typed"
)

// DefaultCatalog returns the posts/comments contract for the given fixtures.
func DefaultCatalog(f Fixtures) []Scenario {
	postPath := fmt.Sprintf(core.PostPathFmt, f.ValidPostID)

	return []Scenario{
		{
			Name:   ScenarioPostByID,
			Method: http.MethodGet,
			Path:   postPath,
			Expectations: []Expectation{
				StatusCode(http.StatusOK),
				ContentTypeJSON(),
				JSONEquals("id", f.ValidPostID),
				JSONEquals("userId", f.ValidPostUserID),
				JSONNotEmpty("title"),
			},
		},
		{
			Name:   ScenarioAllPosts,
			Method: http.MethodGet,
			Path:   core.PostsPath,
			Expectations: []Expectation{
				StatusCode(http.StatusOK),
				ArraySize("", f.ExpectedPostCount),
			},
		},
		{
			Name:   ScenarioPostInvalidID,
			Method: http.MethodGet,
			Path:   fmt.Sprintf(core.PostPathFmt, f.InvalidPostID),
			Expectations: []Expectation{
				StatusCode(http.StatusNotFound),
				BodyEquals("{}"),
			},
		},
		{
			Name:   ScenarioInvalidEndpoint,
			Method: http.MethodGet,
			Path:   f.InvalidPath,
			Expectations: []Expectation{
				StatusCode(http.StatusNotFound),
			},
		},
		{
			Name:   ScenarioPostComments,
			Method: http.MethodGet,
			Path:   fmt.Sprintf(core.CommentsPathFmt, f.ValidPostID),
			Expectations: []Expectation{
				StatusCode(http.StatusOK),
				ContentTypeJSON(),
				ArraySizeGreaterThan("", 0),
				JSONEquals("[0].postId", f.ValidPostID),
				JSONContains("[0].email", "@"),
			},
		},
		{
			Name:   ScenarioCommentsInvalidPost,
			Method: http.MethodGet,
			Path:   fmt.Sprintf(core.CommentsPathFmt, f.InvalidPostID),
			Expectations: []Expectation{
				StatusCode(http.StatusOK),
				ArraySize("", 0),
			},
		},
		{
			Name:   ScenarioPostByIDTyped,
			Method: http.MethodGet,
			Path:   postPath,
			Expectations: []Expectation{
				StatusCode(http.StatusOK),
				Decode(fmt.Sprintf("post.userId == %d and title present", f.ValidPostUserID), func(p core.Post) error {
					if p.UserID != f.ValidPostUserID {
						return fmt.Errorf("user id should be %d, got %d", f.ValidPostUserID, p.UserID)
					}
					if p.Title == "" {
						return errors.New("title should not be empty")
					}
					return nil
				}),
			},
		},
	}
}

package objectstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// fakeAPIError implements smithy.APIError for classification tests.
type fakeAPIError struct {
	code string
}

func (e *fakeAPIError) Error() string                 { return e.code }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return e.code }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "Typed NotFound",
			err:  &types.NotFound{},
			want: true,
		},
		{
			name: "Typed NoSuchKey",
			err:  &types.NoSuchKey{},
			want: true,
		},
		{
			name: "Wrapped NotFound",
			err:  fmt.Errorf("head: %w", &types.NotFound{}),
			want: true,
		},
		{
			name: "API error with NotFound code",
			err:  &fakeAPIError{code: "NotFound"},
			want: true,
		},
		{
			name: "API error with 404 code",
			err:  &fakeAPIError{code: "404"},
			want: true,
		},
		{
			name: "API error with access denied code",
			err:  &fakeAPIError{code: "AccessDenied"},
			want: false,
		},
		{
			name: "Plain error",
			err:  errors.New("connection reset"),
			want: false,
		},
		{
			name: "Nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

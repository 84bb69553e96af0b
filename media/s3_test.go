package media

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	qt "github.com/frankban/quicktest"
)

func TestKeyTaken(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "precondition failed",
			err:  &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"},
			want: true,
		},
		{
			name: "concurrent conditional write",
			err:  fmt.Errorf("operation error S3: PutObject: %w", &smithy.GenericAPIError{Code: "ConditionalRequestConflict"}),
			want: true,
		},
		{
			name: "access denied",
			err:  &smithy.GenericAPIError{Code: "AccessDenied"},
			want: false,
		},
		{
			name: "not an api error",
			err:  errors.New("connection reset"),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(keyTaken(tt.err), qt.Equals, tt.want)
		})
	}
}

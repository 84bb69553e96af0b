//go:build property

package slug_test

import (
	"regexp"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/eringen/folio/slug"
)

var slugShape = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)

func TestMakeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("output is lowercase hyphenated", prop.ForAll(
		func(s string) bool {
			return slugShape.MatchString(slug.Make(s))
		},
		gen.AnyString(),
	))

	properties.Property("make is a fixed point on its own output", prop.ForAll(
		func(s string) bool {
			once := slug.Make(s)
			return slug.Make(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

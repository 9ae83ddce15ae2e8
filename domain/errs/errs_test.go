package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var allCodes = []Code{
	NotFound,
	NotOnExpectedPage,
	MalformedInput,
	ExpectationFailed,
	UndefinedStep,
	Internal,
}

func TestCodeOf_WrappedTypedError(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		code := rapid.SampledFrom(allCodes).Draw(t, "code")
		message := rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,60}`).Draw(t, "message")

		err := fmt.Errorf("outer: %w", Wrap(code, message, errors.New("cause")))
		if got := CodeOf(err); got != code {
			t.Fatalf("CodeOf mismatch: got=%q want=%q", got, code)
		}
		if !Is(err, code) {
			t.Fatalf("Is(%q) = false", code)
		}
	})
}

func TestCodeOf_Untyped(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Internal, CodeOf(errors.New("boom")))
	assert.Equal(t, Internal, CodeOf(nil))
	assert.False(t, Is(nil, Internal))
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "link not found", New(NotFound, "link not found").Error())
	assert.Equal(t, "bad date: parse failure",
		Wrap(MalformedInput, "bad date", errors.New("parse failure")).Error())
	assert.Equal(t, "section 3 missing", Newf(NotFound, "section %d missing", 3).Error())
	assert.Equal(t, string(Internal), (&Error{Code: Internal}).Error())

	cause := errors.New("driver closed")
	assert.ErrorIs(t, Wrap(Internal, "click failed", cause), cause)
}

package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/platform/sentinel"
)

func TestRunConcurrentClassifiesErrors(t *testing.T) {
	res := RunConcurrent(5, func(idx int) error {
		switch idx {
		case 0:
			return nil
		case 1:
			return dErrors.New(dErrors.CodeCredentialAlreadyIssued, "exists")
		case 2:
			return sentinel.ErrConflict
		case 3:
			return dErrors.New(dErrors.CodeCredentialNotFound, "none")
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, int32(1), res.Successes)
	assert.Equal(t, int32(2), res.Conflicts)
	assert.Equal(t, int32(1), res.NotFounds)
	assert.Equal(t, int32(1), res.Errors)
	assert.Equal(t, int32(5), res.Total())
}

func TestRunConcurrentCollect(t *testing.T) {
	ok, errs := RunConcurrentCollect(4, func(idx int) error {
		if idx%2 == 0 {
			return errors.New("even")
		}
		return nil
	})
	assert.Equal(t, int32(2), ok)
	assert.Len(t, errs, 2)
}

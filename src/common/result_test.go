package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		result Result
		status int
	}{
		{"applied", Appliedf("done"), http.StatusOK},
		{"skipped", Skippedf("duplicate delivery"), http.StatusAccepted},
		{"not found", NotFoundf("no wallet for emitter %d", 42), http.StatusNoContent},
		{"internal", Internal(errors.New("connection reset")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.status, c.result.StatusCode())
		})
	}
}

func TestResultConstructors(t *testing.T) {
	r := NotFoundf("no wallet for emitter %d and owner %d", 1, 2)
	assert.Equal(t, Failed, r.Kind)
	assert.Equal(t, FailureNotFound, r.Failure)
	assert.Equal(t, "no wallet for emitter 1 and owner 2", r.Message)
	assert.Nil(t, r.Err)

	err := errors.New("boom")
	r = Internal(err)
	assert.Equal(t, Failed, r.Kind)
	assert.Equal(t, FailureInternal, r.Failure)
	assert.Equal(t, err, r.Err)

	r = Skippedf("event %s already processed", "evt_1")
	assert.Equal(t, Skipped, r.Kind)
	assert.Equal(t, FailureNone, r.Failure)
}

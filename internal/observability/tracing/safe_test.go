package tracing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smallbiznis/wardboard/internal/domainerr"
)

func TestSafeAttributesDropsFreeText(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/state/bed/:id"),
		attribute.String("note", "patient name"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(fmt.Errorf("x: %w", domainerr.NotFound("bed_not_found"))), "not_found: bed_not_found")
	assert.EqualError(t, SafeError(errors.New("pq: value 'secret' violates")), "internal_error")
}

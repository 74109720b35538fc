package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeMissingFields, status: http.StatusBadRequest, publicMsg: "required fields missing", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", detailsOK: true},
		{code: CodeInvalidTransition, status: http.StatusBadRequest, publicMsg: "status transition not allowed", detailsOK: true},
		{code: CodeNoOp, status: http.StatusBadRequest, publicMsg: "status unchanged", detailsOK: true},
		{code: CodeInvalidState, status: http.StatusBadRequest, publicMsg: "action not allowed in current state", detailsOK: true},
		{code: CodePersistence, status: http.StatusInternalServerError, publicMsg: "persistence failure", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		assert.Equal(t, tt.status, meta.HTTPStatus, "status for %s", tt.code)
		assert.Equal(t, tt.publicMsg, meta.PublicMessage, "public message for %s", tt.code)
		assert.Equal(t, tt.retryable, meta.Retryable, "retryable for %s", tt.code)
		assert.Equal(t, tt.detailsOK, meta.DetailsAllowed, "details for %s", tt.code)
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	assert.Equal(t, CodeValidation, base.Code())
	assert.Equal(t, "missing foo", base.Message())
	assert.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "foo"})
	assert.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodePersistence, cause, "insert order")
	assert.True(t, stdErrors.Is(wrapped, cause))
	assert.Equal(t, CodePersistence, wrapped.Code())
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestMissingFieldNamesField(t *testing.T) {
	err := MissingField("items[0].unit")
	require.Equal(t, CodeMissingFields, err.Code())
	assert.Equal(t, map[string]any{"field": "items[0].unit"}, err.Details())
	assert.Equal(t, "items[0].unit is required", err.Message())
}

func TestAsAndHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInvalidState, "shipped"))
	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, CodeInvalidState, typed.Code())
	assert.True(t, HasCode(err, CodeInvalidState))
	assert.False(t, HasCode(err, CodeNoOp))
	assert.Nil(t, As(stdErrors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_orders", TableName: "orders", Message: "duplicate"}
	dump := Dump(Wrap(CodePersistence, pgErr, "insert order"))
	assert.Equal(t, CodePersistence, dump.Code)
	assert.Equal(t, "23505", dump.PGCode)
	assert.Equal(t, "ux_orders", dump.PGConstraint)
	assert.Equal(t, "orders", dump.PGTable)
	assert.GreaterOrEqual(t, len(dump.Chain), 2)

	pqErr := &pq.Error{Code: "23503", Table: "order_items", Constraint: "fk_order"}
	dump = Dump(fmt.Errorf("wrap: %w", pqErr))
	assert.Equal(t, "23503", dump.PGCode)
	assert.Equal(t, "order_items", dump.PGTable)
	assert.Equal(t, "fk_order", dump.PGConstraint)

	assert.Equal(t, ErrorDump{}, Dump(nil))
}

package operations

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesforecast/internal/errors"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{
			name: "with step",
			err:  NewValidationError(StageIDForecast, "bad options"),
			want: "[validation] forecast: bad options",
		},
		{
			name: "with cause",
			err:  NewExecutionError(StageIDIngest, errors.New("disk full")),
			want: "[execution] ingest: stage execution failed: disk full",
		},
		{
			name: "without step",
			err:  &OperationError{Type: ErrorTypeNotFound, Message: "step with ID x not found"},
			want: "[not_found] step with ID x not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	var nilErr *OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, StageIDIngest, "x"))

	cause := apperrors.NewInsufficientDataError(1, 0)
	wrapped := WrapError(cause, StageIDForecast, "stage execution failed")
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrorTypeExecution, wrapped.Type)
	assert.Equal(t, StageIDForecast, wrapped.Step)
	assert.True(t, apperrors.IsType(wrapped, apperrors.ErrTypeInsufficientData))
	assert.Equal(t, 5, apperrors.ExitCode(wrapped))

	t.Run("existing operation error keeps its type", func(t *testing.T) {
		inner := &OperationError{Type: ErrorTypeDependency, Message: "missing"}
		out := WrapError(fmt.Errorf("outer: %w", inner), StageIDAnalytics, "prefix")
		assert.Same(t, inner, out)
		assert.Equal(t, StageIDAnalytics, out.Step)
		assert.Equal(t, "prefix: missing", out.Message)
	})
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(errors.New("plain")))
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(NewTimeoutError("s", "1s", nil)))
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(fmt.Errorf("x: %w", NewCancellationError("s", nil))))
}

func TestNewDependencyError(t *testing.T) {
	err := NewDependencyError(StageIDForecast, "/data/sales_daily.csv", "required input is missing")
	assert.Equal(t, ErrorTypeDependency, err.Type)
	assert.Equal(t, "/data/sales_daily.csv", err.Context["depends_on"])
}

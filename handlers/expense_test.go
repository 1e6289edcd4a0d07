package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"equalpay-backend/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestReplaceExpensesErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "missing originals is the caller's fault",
			err:        errReplaceOriginalsMissing,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "database failure is a server error",
			err:        errors.New("driver: bad connection"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			replaceExpensesError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestSplitModelPercentageBps(t *testing.T) {
	expenseID := uuid.New()
	row := ledger.SplitRow{UserID: uuid.New(), AmountMinor: 500, PercentageBps: 0}

	pct := splitModel(expenseID, string(ledger.SplitPercentage), row)
	if pct.PercentageBps == nil || *pct.PercentageBps != 0 {
		t.Errorf("percentage split bps = %v, want pointer to 0", pct.PercentageBps)
	}

	eq := splitModel(expenseID, string(ledger.SplitEqual), row)
	if eq.PercentageBps != nil {
		t.Errorf("equal split bps = %v, want nil", eq.PercentageBps)
	}

	custom := splitModel(expenseID, string(ledger.SplitCustomAmount), row)
	if custom.PercentageBps != nil {
		t.Errorf("custom split bps = %v, want nil", custom.PercentageBps)
	}
}

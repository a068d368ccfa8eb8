package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationLine struct {
	ClientID   string          `json:"client_id" binding:"required,uuid"`
	Percentage decimal.Decimal `json:"percentage" binding:"gt=0,lte=100"`
}

type validationRequest struct {
	Concept string           `json:"concept" binding:"required,max=20"`
	Amount  decimal.Decimal  `json:"amount" binding:"gt=0"`
	Lines   []validationLine `json:"distributions" binding:"required,min=1,dive"`
}

func bindValidation(t *testing.T, body string) (*httptest.ResponseRecorder, *dto.ErrorInfo) {
	t.Helper()
	SetupValidator()

	r := gin.New()
	r.POST("/test", func(c *gin.Context) {
		var req validationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body)))
	if w.Code == http.StatusNoContent {
		return w, nil
	}
	return w, decodeError(t, w)
}

func TestValidation_Valid(t *testing.T) {
	w, _ := bindValidation(t, `{"concept":"Rent","amount":"100.50",
		"distributions":[{"client_id":"6f1c2b9e-9d1c-4a55-8a55-0b1c3c2d4e5f","percentage":"100"}]}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestValidation_DecimalRules(t *testing.T) {
	w, info := bindValidation(t, `{"concept":"Rent","amount":"0",
		"distributions":[{"client_id":"6f1c2b9e-9d1c-4a55-8a55-0b1c3c2d4e5f","percentage":"120"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, info)
	assert.Equal(t, dto.ErrCodeValidation, info.Code)

	fields := map[string]string{}
	for _, d := range info.Details {
		fields[d.Field] = d.Tag
	}
	assert.Equal(t, "gt", fields["amount"])
	assert.Equal(t, "lte", fields["distributions[0].percentage"])
}

func TestValidation_Messages(t *testing.T) {
	w, info := bindValidation(t, `{"concept":"","amount":"5","distributions":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	messages := map[string]string{}
	for _, d := range info.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", messages["concept"])
	assert.Equal(t, "Must contain at least 1 items", messages["distributions"])
}

func TestValidation_MalformedJSON(t *testing.T) {
	w, info := bindValidation(t, `{"concept":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, info.Code)
	assert.Equal(t, "Malformed request body", info.Message)
}

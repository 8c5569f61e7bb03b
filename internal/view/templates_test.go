package view

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
	assert.True(t, engine.Has("pages/home.html"))
	assert.True(t, engine.Has("pages/reports/report.html"))
}

func TestRenderPromotesFirstFlash(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/home.html", TemplateData{
		Title:   "Home",
		Flashes: []shared.FlashMessage{{Kind: "success", Message: "Saved"}},
	})
	require.NoError(t, err)
	assert.Contains(t, rr.Body.String(), "Saved")
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html"))

	assert.Error(t, engine.Render(httptest.NewRecorder(), "pages/missing.html", TemplateData{}))
}

func TestNumberFormatting(t *testing.T) {
	assert.Equal(t, "1,234.50", FormatMoney(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "600", FormatNumber(600))
	assert.Equal(t, "9.50%", FormatPercent(9.5))
	assert.Equal(t, "0.00", FormatMoney("not a number"))
}

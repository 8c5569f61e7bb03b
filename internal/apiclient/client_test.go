package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	endpoints []string
	statuses  []int
}

func (o *recordingObserver) ObserveUpstream(endpoint string, status int, elapsed time.Duration) {
	o.endpoints = append(o.endpoints, endpoint)
	o.statuses = append(o.statuses, status)
}

func TestItemCodesDefaultsMajorGroupToSelectAll(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Purchase/GetItemCodes", r.URL.Path)
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"Data":[{"ItemCode":"IC-1","DCACode":"D1"}]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	rows, err := client.ItemCodes(context.Background(), ItemCodeQuery{Category: "Cement"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{SelectAll}, gotQuery["mgc"])
	assert.Equal(t, []string{"Cement"}, gotQuery["category"])
	assert.Equal(t, "IC-1", rows[0].String("ItemCode"))
}

func TestPostSendsJSONAndBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "E100", body["EmpRefNo"])
		_, _ = w.Write([]byte(`"Approved Successfully$jdoe01"`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	ctx := ContextWithToken(context.Background(), "tok")
	msg, err := client.ApproveStaff(ctx, map[string]string{"EmpRefNo": "E100"})
	require.NoError(t, err)
	assert.Equal(t, "Approved Successfully$jdoe01", msg)
}

func TestErrorResponseCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"Message":"Cannot insert the value NULL into column 'MailId', table 'Staff'; column does not allow nulls."}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := New(srv.URL, time.Second, WithObserver(obs))
	_, err := client.PendingStaff(context.Background(), "3")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	class := Classify(err)
	assert.Equal(t, KindConstraintViolation, class.Kind)
	assert.Equal(t, "MailId", class.Column)
	assert.Equal(t, []string{"/HR/GetPendingStaffRegistrations"}, obs.endpoints)
	assert.Equal(t, []int{http.StatusBadRequest}, obs.statuses)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(url, time.Second)
	_, err := client.Banks(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Empty(t, apiErr.Body)
	assert.NotNil(t, apiErr.Err)
}

func TestUnconfiguredClient(t *testing.T) {
	client := New("", time.Second)
	_, err := client.Banks(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDecodeDataAcceptsBareArrays(t *testing.T) {
	rows, err := DecodeData[[]Record]([]byte(`[{"A":1},{"A":2}]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[1].String("A"))
}

func TestDecodeMessageShapes(t *testing.T) {
	assert.Equal(t, "ok", DecodeMessage([]byte(`"ok"`)))
	assert.Equal(t, "done$x", DecodeMessage([]byte(`{"Data":"done$x"}`)))
	assert.Equal(t, "plain text", DecodeMessage([]byte("plain text")))
}

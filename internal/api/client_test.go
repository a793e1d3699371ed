package api

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestCall_Classification(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantOk      bool
		wantStatus  int
		wantErr     string
		wantPayload *payload
	}{
		{
			name: "json payload on success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"name":"monstera"}`))
			},
			wantOk:      true,
			wantStatus:  http.StatusOK,
			wantPayload: &payload{Name: "monstera"},
		},
		{
			name: "204 is success without payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
			wantOk:     true,
			wantStatus: http.StatusNoContent,
		},
		{
			name: "empty body is success without payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
			},
			wantOk:     true,
			wantStatus: http.StatusOK,
		},
		{
			name: "non-json success body is success without payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				_, _ = w.Write([]byte("ok"))
			},
			wantOk:     true,
			wantStatus: http.StatusOK,
		},
		{
			name: "structured error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"not found"}`))
			},
			wantStatus: http.StatusNotFound,
			wantErr:    "not found",
		},
		{
			name: "message field fallback",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"message":"cantidad inválida"}`))
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    "cantidad inválida",
		},
		{
			name: "text body fallback",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantErr:    "boom",
		},
		{
			name: "status text fallback on empty error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
			wantErr:    "request failed: Bad Gateway",
		},
		{
			name: "malformed success body is a failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"name":`))
			},
			wantStatus: http.StatusOK,
			wantErr:    "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			resp := Call[payload](context.Background(), NewClient(srv.URL), Request{Path: "/x"})

			assert.Equal(t, tt.wantOk, resp.Ok())
			assert.Equal(t, tt.wantStatus, resp.Status)
			if tt.wantErr != "" {
				assert.Contains(t, resp.Err, tt.wantErr)
				assert.Nil(t, resp.Data)
			}
			if tt.wantPayload != nil {
				require.NotNil(t, resp.Data)
				assert.Equal(t, *tt.wantPayload, *resp.Data)
			}
		})
	}
}

func TestResponse_Payload(t *testing.T) {
	got, err := Response[payload]{Data: &payload{Name: "monstera"}, Status: http.StatusOK}.Payload()
	require.NoError(t, err)
	assert.Equal(t, "monstera", got.Name)

	got, err = Response[payload]{Status: http.StatusNoContent}.Payload()
	require.Error(t, err)
	assert.Nil(t, got)
	callErr := &CallError{}
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, http.StatusNoContent, callErr.Status)

	got, err = Response[payload]{Status: http.StatusNotFound, Err: "not found"}.Payload()
	require.Error(t, err)
	assert.Nil(t, got)
	assert.EqualError(t, err, "not found")
}

func TestCall_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	resp := Call[payload](context.Background(), NewClient(srv.URL), Request{Path: "/x"})

	assert.False(t, resp.Ok())
	assert.Zero(t, resp.Status)
	assert.NotEmpty(t, resp.Err)
}

func TestCall_RequestShape(t *testing.T) {
	var got *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	q := url.Values{}
	q.Set("cantidad", "2")
	resp := Call[struct{}](context.Background(), NewClient(srv.URL), Request{
		Method: http.MethodPost,
		Path:   "/carrito/abc/agregar",
		Query:  q,
		Body:   map[string]string{"motivoBaja": "test"},
		Token:  "tok-123",
	})

	require.True(t, resp.Ok())
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/carrito/abc/agregar", got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("cantidad"))
	assert.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"motivoBaja":"test"}`, string(body))
}

func TestCall_MultipartForm(t *testing.T) {
	type part struct {
		contentType string
		body        []byte
		filename    string
	}
	parts := map[string]part{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		reader := multipart.NewReader(r.Body, params["boundary"])
		for {
			p, err := reader.NextPart()
			if err != nil {
				break
			}
			data, _ := io.ReadAll(p)
			parts[p.FormName()] = part{
				contentType: p.Header.Get("Content-Type"),
				body:        data,
				filename:    p.FileName(),
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	form := (&Form{}).
		AddJSON("producto", map[string]any{"nombreProducto": "Pala"}).
		AddFile("imagen", "pala.jpg", []byte{0xff, 0xd8})

	resp := Call[struct{}](context.Background(), NewClient(srv.URL), Request{
		Method: http.MethodPost,
		Path:   "/productos",
		Form:   form,
	})

	require.True(t, resp.Ok())

	product, ok := parts["producto"]
	require.True(t, ok)
	assert.Equal(t, "application/json", product.contentType)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(product.body, &decoded))
	assert.Equal(t, "Pala", decoded["nombreProducto"])

	image, ok := parts["imagen"]
	require.True(t, ok)
	assert.Equal(t, "pala.jpg", image.filename)
	assert.Equal(t, []byte{0xff, 0xd8}, image.body)
}

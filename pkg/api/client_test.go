package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"research-assistant-cli/internal/dto"
	"research-assistant-cli/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestLoginSuccess(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		var req dto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Email)
		assert.Equal(t, "x", req.Password)

		json.NewEncoder(w).Encode(dto.LoginResponse{
			Success: true,
			User:    dto.AuthUser{Id: "user-1", Email: "a@b.com"},
		})
	}))
	defer srv.Close()

	session, err := client.Login(context.Background(), &dto.LoginRequest{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserId)
	assert.Equal(t, "a@b.com", session.Email)
}

func TestLoginFailureIsAuthErrorVerbatim(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "Invalid login credentials"})
	}))
	defer srv.Close()

	_, err := client.Login(context.Background(), &dto.LoginRequest{Email: "a@b.com", Password: "bad"})
	require.Error(t, err)

	authErr, ok := err.(*AuthError)
	require.True(t, ok, "expected *AuthError, got %T", err)
	assert.Equal(t, "Invalid login credentials", authErr.Message)
}

func TestTransportErrorClassification(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)

	_, err := client.ListReferenceSets(context.Background())
	require.Error(t, err)
	_, ok := err.(*TransportError)
	assert.True(t, ok, "expected *TransportError, got %T", err)
}

func TestTestSearchSendsServerSideFilterParams(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-search", r.URL.Path)

		var req dto.TestSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "diabetes risk", req.Query)
		assert.Equal(t, "all", req.RefSetId)
		assert.Equal(t, 10, req.TopK)
		assert.Equal(t, 0.9, req.MinScore)

		json.NewEncoder(w).Encode(dto.TestSearchResponse{
			Query:           req.Query,
			ResultsFound:    1,
			TotalCandidates: 40,
			RefSetFilter:    req.RefSetId,
			MinScoreUsed:    req.MinScore,
		})
	}))
	defer srv.Close()

	res, err := client.TestSearch(context.Background(), &dto.TestSearchRequest{
		Query: "diabetes risk", RefSetId: "all", TopK: 10, MinScore: 0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ResultsFound)
	assert.Equal(t, 40, res.TotalCandidates)
	assert.Equal(t, 0.9, res.MinScoreUsed)
}

func TestTestSearchNon2xxCarriesServerMessage(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "index unavailable"})
	}))
	defer srv.Close()

	_, err := client.TestSearch(context.Background(), &dto.TestSearchRequest{Query: "q", RefSetId: "all", TopK: 5})
	require.Error(t, err)

	remoteErr, ok := err.(*RemoteError)
	require.True(t, ok, "expected *RemoteError, got %T", err)
	assert.Equal(t, "index unavailable", remoteErr.Message)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
}

func TestUploadDocumentMultipart(t *testing.T) {
	refSetId := uuid.New()

	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reference-sets/"+refSetId.String()+"/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Medicine", r.FormValue("domain"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.md", header.Filename)

		json.NewEncoder(w).Encode(dto.UploadResponse{
			Success: true,
			Stats:   entity.IngestionStats{Filename: "notes.md", Chunks: 12, Pages: 3},
		})
	}))
	defer srv.Close()

	stats, err := client.UploadDocument(context.Background(), refSetId, "Medicine", "notes.md", strings.NewReader("# notes"))
	require.NoError(t, err)
	assert.Equal(t, "notes.md", stats.Filename)
	assert.Equal(t, 12, stats.Chunks)
	assert.Equal(t, 3, stats.Pages)
}

func TestUploadDocumentFailureSurfacesServerError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dto.UploadResponse{Success: false, Error: "unsupported file type"})
	}))
	defer srv.Close()

	_, err := client.UploadDocument(context.Background(), uuid.New(), "Medicine", "x.bin", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, "unsupported file type", err.Error())
}

func TestDeleteReferenceSet(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		status  int
		body    interface{}
		wantErr string
	}{
		{
			name:   "acknowledged",
			status: http.StatusOK,
			body:   dto.DeleteResponse{Success: true},
		},
		{
			name:    "service refuses",
			status:  http.StatusOK,
			body:    dto.DeleteResponse{Success: false, Error: "reference set has active inquiries"},
			wantErr: "reference set has active inquiries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/reference-sets/"+id.String(), r.URL.Path)
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			err := client.DeleteReferenceSet(context.Background(), id)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			}
		})
	}
}

func TestChat(t *testing.T) {
	inquiryId := uuid.New()
	refSet := uuid.New()

	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)

		var req dto.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, inquiryId, req.InquiryId)
		assert.Equal(t, []uuid.UUID{refSet}, req.ReferenceSets)

		json.NewEncoder(w).Encode(dto.ChatResponse{
			Response:  "Risk factors include...",
			Citations: []string{"doc.pdf p.3", "doc.pdf p.7"},
			Sources:   []string{"doc.pdf"},
		})
	}))
	defer srv.Close()

	res, err := client.Chat(context.Background(), &dto.ChatRequest{
		InquiryId: inquiryId, Query: "what are the risk factors?", ReferenceSets: []uuid.UUID{refSet},
	})
	require.NoError(t, err)
	assert.Equal(t, "Risk factors include...", res.Response)
	assert.Len(t, res.Citations, 2)
}

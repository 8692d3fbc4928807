package registryhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
)

func newRegistryStub(t *testing.T) (*httptest.Server, *map[uint64]string) {
	t.Helper()
	owners := map[uint64]string{3: "owner-3"}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/registry/v1/tokens/3/owner", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"identity": owners[3]})
	})
	mux.HandleFunc("GET /api/registry/v1/tokens/3/creator", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"identity": "creator-3"})
	})
	mux.HandleFunc("POST /api/registry/v1/tokens/3/transfer", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			NewOwner string `json:"new_owner"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		owners[3] = body.NewOwner
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/registry/v1/tokens/count", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]uint64{"count": 4})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &owners
}

func TestClientReadsIdentities(t *testing.T) {
	server, _ := newRegistryStub(t)
	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	owner, err := client.OwnerOf(ctx, 3)
	if err != nil || owner != "owner-3" {
		t.Fatalf("owner lookup failed: %q err=%v", owner, err)
	}
	creator, err := client.CreatorOf(ctx, 3)
	if err != nil || creator != "creator-3" {
		t.Fatalf("creator lookup failed: %q err=%v", creator, err)
	}
	count, err := client.TokenCount(ctx)
	if err != nil || count != 4 {
		t.Fatalf("token count failed: %d err=%v", count, err)
	}
}

func TestClientMapsNotFound(t *testing.T) {
	server, _ := newRegistryStub(t)
	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	if _, err := client.OwnerOf(ctx, 99); !errors.Is(err, domainerrors.ErrTokenUnknown) {
		t.Fatalf("expected token unknown, got %v", err)
	}
	if err := client.TransferOwnership(ctx, 99, "anyone"); !errors.Is(err, domainerrors.ErrTokenUnknown) {
		t.Fatalf("expected token unknown on transfer, got %v", err)
	}
}

func TestClientTransfersOwnership(t *testing.T) {
	server, owners := newRegistryStub(t)
	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	if err := client.TransferOwnership(ctx, 3, "new-owner"); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if (*owners)[3] != "new-owner" {
		t.Fatalf("expected the stub to record the new owner, got %q", (*owners)[3])
	}
}

package rpcapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/cors"
)

// adminGatedMethod is the one method spec.md §7's trust note calls out as
// needing operator gating in a hardened deployment.
const adminGatedMethod = "blockchain_creditBalance"

// requestReadTimeout matches spec.md §5's default bound on in-flight RPC
// handlers at shutdown.
const requestReadTimeout = 30 * time.Second

// Server wires the BlockchainAPI into a github.com/ethereum/go-ethereum/rpc
// server, fronted by open CORS (spec.md §6) and an optional JWT gate on
// the administrative credit method.
type Server struct {
	httpSrv *http.Server
}

// NewServer builds the HTTP server. adminTokenSecret, if non-empty, is the
// HMAC secret blockchain_creditBalance callers must present as a Bearer
// JWT; an empty secret leaves the method open, which is only acceptable
// for local/operator-only deployments (spec.md §7).
func NewServer(addr string, api *BlockchainAPI, adminTokenSecret string) (*Server, error) {
	rpcSrv := rpc.NewServer()
	if err := rpcSrv.RegisterName("blockchain", api); err != nil {
		return nil, err
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(adminGate(rpcSrv, adminTokenSecret))

	return &Server{
		httpSrv: &http.Server{
			Addr:        addr,
			Handler:     corsHandler,
			ReadTimeout: requestReadTimeout,
		},
	}, nil
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("rpcapi: listening", "addr", s.httpSrv.Addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), requestReadTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("rpcapi: shutdown error", "err", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// adminGate peeks at the JSON-RPC envelope's method field and, for
// adminGatedMethod only, requires a valid Bearer JWT signed with
// adminTokenSecret before forwarding to next.
func adminGate(next http.Handler, adminTokenSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if adminTokenSecret == "" || r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var envelope struct {
			Method string `json:"method"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Method == adminGatedMethod {
			if !validBearerToken(r.Header.Get("Authorization"), adminTokenSecret) {
				http.Error(w, "missing or invalid operator token", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func validBearerToken(authHeader, secret string) bool {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return false
	}
	raw := strings.TrimPrefix(authHeader, prefix)

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	return err == nil && token.Valid
}

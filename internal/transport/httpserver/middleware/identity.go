package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	householddomain "rep-ledger-go/internal/domain/household"
	"rep-ledger-go/pkg/logger"
)

// Authentication is an external collaborator; by the time a request reaches
// this service the caller has been authenticated and their member id is
// carried in X-Member-ID. This middleware resolves that id to a Member and
// attaches it to the request context.

const memberHeader = "X-Member-ID"

type contextKey int

const memberKey contextKey = iota

type MemberResolver interface {
	GetMember(ctx context.Context, memberID string) (*householddomain.Member, error)
}

type Identity struct {
	members MemberResolver
	log     logger.Logger
}

func NewIdentity(members MemberResolver, log logger.Logger) *Identity {
	return &Identity{members: members, log: log}
}

func (i *Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		memberID := strings.TrimSpace(r.Header.Get(memberHeader))
		if memberID == "" {
			writeUnauthorized(w, "missing_identity", "missing "+memberHeader+" header")
			return
		}

		member, err := i.members.GetMember(r.Context(), memberID)
		if err != nil {
			i.log.BusinessError("identity: unknown member", err, "member_id", memberID)
			writeUnauthorized(w, "unknown_member", "unknown member")
			return
		}

		ctx := context.WithValue(r.Context(), memberKey, *member)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func MemberFromContext(ctx context.Context) (householddomain.Member, bool) {
	member, ok := ctx.Value(memberKey).(householddomain.Member)
	return member, ok
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}

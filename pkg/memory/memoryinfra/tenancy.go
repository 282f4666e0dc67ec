package memoryinfra

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
)

// TokenClaims are the identity claims the memory service puts in its tokens.
type TokenClaims struct {
	UserID         string `json:"user_id"`
	UserIDAlt      string `json:"userId"`
	OrganizationID string `json:"organization_id"`
	OrgID          string `json:"org_id"`
	TenantID       string `json:"tenant_id"`
	jwt.RegisteredClaims
}

func (c *TokenClaims) tenancy() restx.Tenancy {
	return restx.Tenancy{
		UserID:         firstNonEmpty(c.UserID, c.UserIDAlt, c.Subject),
		OrganizationID: firstNonEmpty(c.OrganizationID, c.OrgID, c.TenantID),
	}
}

// TokenTenancy resolves tenancy from static configuration, falling back to
// the bearer token's claims. The token is decoded without verifying its
// signature; the server still verifies it on every call.
type TokenTenancy struct {
	static restx.Tenancy
	parser *jwt.Parser

	mu        sync.Mutex
	lastToken string
	last      restx.Tenancy
}

func NewTokenTenancy(organizationID, userID string) *TokenTenancy {
	return &TokenTenancy{
		static: restx.Tenancy{OrganizationID: organizationID, UserID: userID},
		parser: jwt.NewParser(),
	}
}

func (t *TokenTenancy) Resolve(token string) restx.Tenancy {
	out := t.static
	if out.OrganizationID != "" && out.UserID != "" {
		return out
	}
	if token == "" {
		return out
	}
	fromToken := t.claims(token)
	if out.OrganizationID == "" {
		out.OrganizationID = fromToken.OrganizationID
	}
	if out.UserID == "" {
		out.UserID = fromToken.UserID
	}
	return out
}

func (t *TokenTenancy) claims(token string) restx.Tenancy {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token == t.lastToken {
		return t.last
	}

	claims := &TokenClaims{}
	if _, _, err := t.parser.ParseUnverified(token, claims); err != nil {
		logx.Debugf("token claims unreadable, skipping tenancy: %v", err)
		t.lastToken, t.last = token, restx.Tenancy{}
		return t.last
	}
	t.lastToken, t.last = token, claims.tenancy()
	return t.last
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

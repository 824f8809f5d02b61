package negotiate

import "context"

// Negotiator turns a creator's user key into hub connection credentials.
type Negotiator interface {
	// NegotiateToken exchanges the user key for a negotiation token.
	NegotiateToken(ctx context.Context, userKey string) (TokenResponse, error)
	// NegotiateAccessToken exchanges the negotiation token and page id for the hub URL and access token.
	NegotiateAccessToken(ctx context.Context, negotiationToken, pageID string) (AccessTokenResponse, error)
}

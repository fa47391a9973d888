package hrapi

import "context"

type clientContextKey struct{}

// ContextWithClient stores the request-bound client in ctx.
func ContextWithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientContextKey{}, c)
}

// ClientFromContext returns the client stored by ContextWithClient, or nil.
func ClientFromContext(ctx context.Context) *Client {
	c, _ := ctx.Value(clientContextKey{}).(*Client)
	return c
}

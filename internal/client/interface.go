package client

import (
	"context"

	"kofi-alerts/pkg/signalr"
)

// HubConnection is the real-time transport driven by the Client.
// *signalr.Conn satisfies it.
type HubConnection interface {
	On(target string, h signalr.Handler)
	OnClose(fn func(error))
	OnReconnecting(fn func(error))
	OnReconnected(fn func())
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// HubFactory builds a transport for a negotiated hub URL and access token.
type HubFactory func(url, accessToken string) HubConnection

// SignalRFactory builds *signalr.Conn transports from a shared option set.
func SignalRFactory(opts signalr.Options) HubFactory {
	return func(url, accessToken string) HubConnection {
		o := opts
		o.AccessToken = accessToken
		return signalr.New(url, o)
	}
}

package ctxutil

import "context"

type traceDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

type callerDataKey struct{}

// CallerData identifies who was admitted by the auth middleware:
// a player session (Wallet) or a game server (GameServer=true).
type CallerData struct {
	Wallet     string
	GameServer bool
}

func WithCallerData(ctx context.Context, cd *CallerData) context.Context {
	return context.WithValue(ctx, callerDataKey{}, cd)
}

func GetCallerData(ctx context.Context) *CallerData {
	val := ctx.Value(callerDataKey{})
	if cd, ok := val.(*CallerData); ok {
		return cd
	}
	return nil
}

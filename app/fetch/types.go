package fetch

import (
	"context"
	"time"
)

// PayloadKind tags what an adapter fetched so normalization can dispatch
// without probing the bytes.
type PayloadKind string

const (
	KindText PayloadKind = "text"
	KindHTML PayloadKind = "html"
	KindJSON PayloadKind = "json"
)

// RawResult is the transient outcome of one adapter invocation. It is
// discarded once normalization has run.
type RawResult struct {
	SourceID  string
	Kind      PayloadKind
	Payload   []byte
	FetchedAt time.Time
}

// Adapter fetches one upstream. Implementations own their timeout; a
// returned error means transport failure, an empty payload is a successful
// fetch whose emptiness is a downstream concern.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) (*RawResult, error)
}

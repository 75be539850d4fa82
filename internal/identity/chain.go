// Where: internal/identity/chain.go
// What: Ordered credential fallback chain.
// Why: Yield one working token credential without callers knowing which source won.
package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// TokenScope is the Azure AD scope requested when probing a source. It is the
// scope Azure OpenAI accepts for bearer authentication.
const TokenScope = "https://cognitiveservices.azure.com/.default"

// Source is one candidate credential in the chain. Credential constructs the
// underlying SDK credential; the resolver probes it with a token request
// before accepting it.
type Source interface {
	Name() string
	Credential() (azcore.TokenCredential, error)
}

// Options configures the canonical chain built by NewChain.
type Options struct {
	// ClientID selects a user-assigned managed identity. When empty the
	// system-assigned identity is tried instead.
	ClientID string
	// Interactive appends the browser login source to the chain. Off by
	// default; server environments are headless.
	Interactive bool
	Logger      *slog.Logger
}

// Resolver walks an ordered list of sources and memoizes the first one that
// yields a token. It is rebuilt fresh on every process start; nothing is
// persisted.
type Resolver struct {
	sources  []Source
	logger   *slog.Logger
	resolved azcore.TokenCredential
	selected string
}

// NewResolver builds a resolver over an explicit source list. Used directly
// by tests; production code goes through NewChain.
func NewResolver(logger *slog.Logger, sources ...Source) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{sources: sources, logger: logger}
}

// NewChain builds the canonical source order:
//  1. user-assigned managed identity when a client id is given, otherwise
//     system-assigned managed identity (never both);
//  2. the local Azure CLI session;
//  3. interactive browser login, only when Options.Interactive is set.
func NewChain(opts Options) *Resolver {
	var sources []Source
	if clientID := strings.TrimSpace(opts.ClientID); clientID != "" {
		sources = append(sources, userAssignedSource{clientID: clientID})
	} else {
		sources = append(sources, systemAssignedSource{})
	}
	sources = append(sources, cliSource{})
	if opts.Interactive {
		sources = append(sources, browserSource{})
	}
	return NewResolver(opts.Logger, sources...)
}

// Resolve returns the first credential in the chain that produces a token for
// TokenScope. The winning credential is cached for the process lifetime;
// subsequent calls return it without re-probing. Per-source failures are
// logged and suppressed; only exhaustion of the whole chain returns an error,
// an *UnavailableError naming every attempt.
//
// A successful probe guarantees the source was reachable at resolution time,
// not that every future token request will succeed.
func (r *Resolver) Resolve(ctx context.Context) (azcore.TokenCredential, error) {
	if r.resolved != nil {
		return r.resolved, nil
	}

	var attempts []Attempt
	for _, source := range r.sources {
		cred, err := source.Credential()
		if err == nil {
			_, err = cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{TokenScope}})
		}
		if err != nil {
			r.logger.Warn("credential source failed", "source", source.Name(), "error", err)
			attempts = append(attempts, Attempt{Source: source.Name(), Err: err})
			continue
		}
		r.logger.Info("credential source selected", "source", source.Name())
		r.resolved = cred
		r.selected = source.Name()
		return cred, nil
	}

	return nil, &UnavailableError{Attempts: attempts}
}

// SelectedSource returns the name of the source that won, or "" before a
// successful Resolve.
func (r *Resolver) SelectedSource() string {
	return r.selected
}

// Package pinguard is a TLS certificate-pinning trust-decision engine: it
// turns a presented certificate chain, a platform system-trust outcome,
// and an operator-configured pinning policy into a deterministic
// TrustDecision plus an ordered event log (package trust), under a
// process-wide Registry that holds per-environment configuration and
// swaps it atomically (this file).
package pinguard

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/sardanioss/pinguard/chainsrc"
	"github.com/sardanioss/pinguard/mtls"
	"github.com/sardanioss/pinguard/policy"
	"github.com/sardanioss/pinguard/trust"
)

// Environment identifies one named configuration slot. Presets Dev, UAT,
// and Prod exist for convenience; any other non-empty string is legal.
type Environment string

const (
	Dev  Environment = "dev"
	UAT  Environment = "uat"
	Prod Environment = "prod"
)

// EnvironmentConfig is what one Environment resolves to: the policy set
// that applies in it, an optional mTLS identity provider, and an optional
// callback invoked whenever that provider reports RenewalRequired.
type EnvironmentConfig struct {
	PolicySet         policy.PolicySet
	MTLSHook          mtls.Provider
	OnRenewalRequired mtls.OnRenewalRequired
}

// configuration is the whole-tree-replacement unit swap-only semantics
// apply to: every environment's config, which one is active, and the
// telemetry sink in effect at the time of the swap. evaluate takes a
// single atomic load of this struct so a decision never mixes an old
// policy set with a new sink (spec's concurrency invariant).
type configuration struct {
	environments map[Environment]EnvironmentConfig
	current      Environment
	sink         trust.Sink
}

// Registry is the process-wide holder of the active configuration.
// Construct one with NewRegistry: it starts with no environments
// registered, and evaluate resolves against an empty PolicySet (spec.md
// §4.8's initial state) until Configure or Update populates it. The zero
// value holds no configuration and no logger and is not usable.
type Registry struct {
	cfg    atomic.Pointer[configuration]
	logger *log.Logger
}

// NewRegistry builds a Registry with a diagnostic logger in the [TAG]
// convention of SilentRelay's internal/config.go (
// log.New(os.Stdout, "[TAG] ", log.Ldate|log.Ltime|log.LUTC)).
func NewRegistry() *Registry {
	r := &Registry{
		logger: log.New(os.Stdout, "[PINGUARD] ", log.Ldate|log.Ltime|log.LUTC),
	}
	r.cfg.Store(&configuration{
		environments: map[Environment]EnvironmentConfig{},
		current:      Prod,
	})
	return r
}

// Builder accumulates environment registrations and registry-wide
// settings before being applied in one Configure call.
type Builder struct {
	environments map[Environment]EnvironmentConfig
	current      Environment
	sink         trust.Sink
}

// NewBuilder starts a Builder defaulting to the Prod environment.
func NewBuilder() *Builder {
	return &Builder{
		environments: map[Environment]EnvironmentConfig{},
		current:      Prod,
	}
}

// WithEnvironment registers or replaces the config for env.
func (b *Builder) WithEnvironment(env Environment, cfg EnvironmentConfig) *Builder {
	b.environments[env] = cfg
	return b
}

// WithCurrent selects which registered environment is active.
func (b *Builder) WithCurrent(env Environment) *Builder {
	b.current = env
	return b
}

// WithTelemetrySink installs the sink every subsequent evaluate call
// delivers events to until the next Configure/Update.
func (b *Builder) WithTelemetrySink(sink trust.Sink) *Builder {
	b.sink = sink
	return b
}

// Configure replaces the registry's entire configuration in one atomic
// swap, built by fn against a fresh Builder.
func (r *Registry) Configure(fn func(b *Builder)) {
	b := NewBuilder()
	fn(b)
	r.Update(&configuration{
		environments: b.environments,
		current:      b.current,
		sink:         b.sink,
	})
}

// Update atomically replaces the registry's configuration. It is the
// primitive Configure and UpdatePolicySet (the pin-rotation-by-replacement
// helper) both build on.
func (r *Registry) Update(cfg *configuration) {
	r.cfg.Store(cfg)
	r.logger.Printf("configuration updated: current=%s environments=%d", cfg.current, len(cfg.environments))
}

// UpdatePolicySet is a narrow convenience over Update: it replaces only
// the policy set for one already-registered environment, leaving
// everything else (current environment, sink, mTLS hook, other
// environments) untouched. This is the mechanism spec.md §9's
// pin-rotation-by-replacement feature builds on.
func (r *Registry) UpdatePolicySet(env Environment, ps policy.PolicySet) error {
	cur := r.cfg.Load()
	existing, ok := cur.environments[env]
	if !ok {
		return fmt.Errorf("pinguard: UpdatePolicySet: environment %q is not registered", env)
	}
	next := &configuration{
		environments: make(map[Environment]EnvironmentConfig, len(cur.environments)),
		current:      cur.current,
		sink:         cur.sink,
	}
	for k, v := range cur.environments {
		next.environments[k] = v
	}
	existing.PolicySet = ps
	next.environments[env] = existing
	r.Update(next)
	return nil
}

// CurrentConfiguration returns the active environment identifier and its
// resolved EnvironmentConfig, or ok=false if the current environment has
// never been registered.
func (r *Registry) CurrentConfiguration() (Environment, EnvironmentConfig, bool) {
	cfg := r.cfg.Load()
	ec, ok := cfg.environments[cfg.current]
	return cfg.current, ec, ok
}

// Evaluate resolves the policy for host under the active environment,
// runs the trust state machine (package trust), and — when an mTLS hook
// is configured for the active environment — invokes it immediately
// afterward to deliver MTLS_IDENTITY_USED/MTLS_IDENTITY_MISSING to the
// telemetry sink, per spec.md §6 ("the core only forwards events"; mTLS
// never gates the decision itself). These mTLS events are not added to
// the returned Decision's Events.
func (r *Registry) Evaluate(
	ctx context.Context,
	certs []chainsrc.Certificate,
	systemTrust chainsrc.SystemTrust,
	host string,
) trust.Decision {
	cfg := r.cfg.Load()
	ec := cfg.environments[cfg.current]

	systemTrusted, errText := false, ""
	if systemTrust != nil {
		systemTrusted, errText = systemTrust.Evaluate(ctx, certs, host)
	}

	resolved := ec.PolicySet.Resolve(host)
	decision := trust.Evaluate(host, certs, systemTrusted, errText, resolved, cfg.sink)

	if ec.MTLSHook != nil {
		r.provideIdentity(ctx, ec.MTLSHook, ec.OnRenewalRequired, host, cfg.sink)
	}

	return decision
}

// provideIdentity invokes provider immediately after a trust decision,
// purely to surface MTLS_IDENTITY_USED/MTLS_IDENTITY_MISSING into sink
// (spec.md §6: mTLS never gates the decision itself). On
// mtls.RenewalRequired it additionally invokes onRenewalRequired, if set
// (spec.md §6: "an optional onRenewalRequired callback is invoked"),
// before falling through to the same MTLS_IDENTITY_MISSING event a
// RenewalRequired outcome carries no usable identity for.
func (r *Registry) provideIdentity(ctx context.Context, provider mtls.Provider, onRenewalRequired mtls.OnRenewalRequired, host string, sink trust.Sink) {
	outcome, err := provider.Provide(ctx, host)
	if err != nil || outcome.Kind != mtls.Success {
		if err == nil && outcome.Kind == mtls.RenewalRequired && onRenewalRequired != nil {
			onRenewalRequired(host)
		}
		if sink != nil {
			sink(trust.Event{Kind: trust.MTLSIdentityMissing, Host: host})
		}
		return
	}
	if sink != nil {
		sink(trust.Event{Kind: trust.MTLSIdentityUsed, Host: host})
	}
}

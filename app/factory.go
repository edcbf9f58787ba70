package app

import (
	"golens/adapters/rng"
	"golens/adapters/tabular"
	"golens/internal/errors"
	"golens/ports"
)

// Domain names a data modality an explainer can operate on.
type Domain string

// Algorithm names a registered explanation algorithm.
type Algorithm string

const (
	DomainTabular Domain = "tabular"

	AlgorithmLIME Algorithm = "lime"
)

type registryKey struct {
	domain    Domain
	algorithm Algorithm
}

// explainerRegistry is the fixed (domain, algorithm) → constructor dispatch
// table. It is package-level static configuration, not runtime-mutable.
var explainerRegistry = map[registryKey]func() ports.ExplainerPort{
	{DomainTabular, AlgorithmLIME}: func() ports.ExplainerPort {
		return tabular.NewLimeExplainer(rng.New())
	},
}

// domainDefaults maps each domain to its default algorithm.
var domainDefaults = map[Domain]Algorithm{
	DomainTabular: AlgorithmLIME,
}

// NewExplainer resolves a registered (domain, algorithm) pair to a fresh
// unbuilt explainer. An empty algorithm selects the domain's default.
// Unregistered combinations fail with an unsupported-algorithm error.
func NewExplainer(domain Domain, algorithm Algorithm) (ports.ExplainerPort, error) {
	if algorithm == "" {
		def, ok := domainDefaults[domain]
		if !ok {
			return nil, errors.UnsupportedAlgorithm(string(domain), string(algorithm))
		}
		algorithm = def
	}
	ctor, ok := explainerRegistry[registryKey{domain, algorithm}]
	if !ok {
		return nil, errors.UnsupportedAlgorithm(string(domain), string(algorithm))
	}
	return ctor(), nil
}

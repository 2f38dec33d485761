// Package scoring picks a leading form for a test from its aggregate
// counters. Strategies are pluggable: UCB1 is the self-adjusting default,
// Uniform gives plain A/B behavior, and LeastTried fills in under-sampled
// forms.
//
// UCB1 and LeastTried memoize their result per (test, candidate set) for a
// short window to bound read load on the store; everything else is stateless.
package scoring

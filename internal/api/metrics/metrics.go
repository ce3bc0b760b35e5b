// Package metrics defines and registers the custom Prometheus metrics for
// the publishing API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "publishing"

// SessionsIssuedTotal counts issued session tokens.
// Label:
//   - method: "signup" or "signin"
var SessionsIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of session tokens issued.",
	},
	[]string{"method"},
)

// RelationMutationsTotal counts applied relational mutations.
// Label:
//   - operation: "favorite", "unfavorite", "follow", "unfollow"
var RelationMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relation_mutations_total",
		Help:      "Total number of relational mutations applied.",
	},
	[]string{"operation"},
)

// OptimisticRollbacksTotal counts reverted speculative flags after a failed
// mutation.
// Label:
//   - operation: the mutation whose failure path fired the revert
var OptimisticRollbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimistic_rollbacks_total",
		Help:      "Total number of optimistic flag reverts after failed mutations.",
	},
	[]string{"operation"},
)

// ConflictsTotal counts secondary-identifier collisions rejected at write
// time.
// Label:
//   - field: "email", "username", or "slug"
var ConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conflicts_total",
		Help:      "Total number of uniqueness conflicts rejected, by field.",
	},
	[]string{"field"},
)

// AccessDenialsTotal counts operations denied by the exposure policy.
var AccessDenialsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denials_total",
		Help:      "Total number of operations denied by the exposure policy.",
	},
)

// ArticlesDeletedTotal counts article deletions, each of which cascades to
// comments and favorites.
var ArticlesDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "articles_deleted_total",
		Help:      "Total number of articles deleted (with cascade).",
	},
)

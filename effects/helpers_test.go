package effects_test

import (
	"errors"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/on-the-ground/tracify/effects"
)

func newTestLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

var errNoUsers = errors.New("no users")

var (
	alice     = map[string]any{"id": 1, "name": "Alice"}
	customers = []any{
		map[string]any{"id": 1, "name": "Alice", "stripeCustomerId": "cus_1234567890"},
	}
)

// usersProgram scripts listCustomers: an empty table, a missing table and
// one user with a stripe customer.
func usersProgram() effects.Program {
	return effects.NewProgram(
		effects.MustTrace(
			effects.Yields(effects.Tag("sql").Returns([]any{})),
			effects.Throws(errors.New("no users")),
		).Named("no users"),
		effects.MustTrace(
			effects.Yields(effects.Tag("sql").Returns(nil)),
			effects.Throws(errors.New("no users")),
		).Named("null result"),
		effects.MustTrace(
			effects.Yields(effects.Tag("sql").Returns([]any{alice})),
			effects.Yields(effects.Fn("fetch").
				Takes("stripe/customers", map[string]any{"query": map[string]any{"userId": 1}}).
				Returns(customers)),
			effects.Returns(customers),
		).Named("stripe customers"),
	)
}

func listCustomers(fx *effects.Capabilities) (any, error) {
	users, err := effects.Perform[[]any](fx, "sql", effects.T("select * from users"))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errNoUsers
	}
	first, _ := users[0].(map[string]any)

	return effects.Perform[[]any](fx, "fetch", "stripe/customers", map[string]any{
		"query": map[string]any{"userId": first["id"]},
	})
}

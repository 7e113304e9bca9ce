// Package retry runs operations with exponential backoff, retrying only
// the failures an ErrorClassifier reports as transient.
//
// Two classifiers are provided: PostgreSQLErrorClassifier for opening
// database connections and HTTPErrorClassifier for archive downloads.
//
//	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry

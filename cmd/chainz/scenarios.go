package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zoobzio/chainz"
	"github.com/zoobzio/chainz/service"
)

var errUnavailable = errors.New("service unavailable")

func scenarios() []Scenario {
	return []Scenario{
		{Name: "retry", Description: "Create a contact with one retry", Run: runRetry},
		{Name: "fallback", Description: "Retry three times, then fall back to an empty id", Run: runFallback},
		{Name: "logged", Description: "Retries wrapped in log messages", Run: runLogged},
		{Name: "timed", Description: "Retries with logging and timing", Run: runTimed},
		{Name: "bulk", Description: "Create 50 contacts in a paced loop", Run: runBulk},
		{Name: "named", Description: "Create 10 contacts with different names", Run: runNamed},
		{Name: "first", Description: "Retrieve multiple, cached, and take the first record", Run: runFirst},
		{Name: "async", Description: "Update in the background and wait for the result", Run: runAsync},
		{Name: "guarded", Description: "Reads behind a circuit breaker with an offline fallback", Run: runGuarded},
	}
}

func runRetry(ctx context.Context, env *Env) error {
	env.Svc.FailNext(1, errUnavailable)

	id, err := env.Fluent.Create(service.NewEntity("contact")).Retry().Do(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "created %s after %d calls\n", id, env.Svc.Calls())
	return nil
}

func runFallback(ctx context.Context, env *Env) error {
	env.Svc.FailNext(10, errUnavailable)
	defer env.Svc.FailNext(0, nil)

	id, err := env.Fluent.Create(service.NewEntity("contact")).
		RetryWith(chainz.RetryConfig[uuid.UUID]{
			Delay:         env.Config.Retry.Delay,
			ExtraAttempts: 3,
			OnError: func(err error) {
				fmt.Fprintf(env.Out, "Exception on create %s\n", err)
			},
			OnExhausted: func() uuid.UUID {
				fmt.Fprintln(env.Out, "Not possible to create contact")
				return uuid.Nil
			},
		}).
		Do(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "result %s\n", id)
	return nil
}

func runLogged(ctx context.Context, env *Env) error {
	env.Svc.FailNext(1, errUnavailable)

	_, err := env.Fluent.Create(service.NewEntity("contact")).
		RetryEvery(env.Config.Retry.Delay, 3).
		Log(env.Info(), "About to start creation", "Creation Completed").
		Do(ctx)
	return err
}

func runTimed(ctx context.Context, env *Env) error {
	_, err := env.Fluent.Create(service.NewEntity("contact")).
		RetryEvery(env.Config.Retry.Delay, 3).
		Log(env.Info(), "About to start creation", "Creation Completed").
		HowLong(env.Info(), "Starting timer", "It took %s").
		Do(ctx)
	return err
}

func runBulk(ctx context.Context, env *Env) error {
	count := 0
	before := env.Svc.Count("contact")

	_, err := env.Fluent.Create(service.NewEntity("contact")).
		Log(func(msg string) { fmt.Fprint(env.Out, msg) }, "Creating 50 Contacts: ", "\nDone.\n").
		WhileEach(func() bool {
			count++
			return count <= 50
		}, func(uuid.UUID) {
			fmt.Fprint(env.Out, "#")
		}).
		RetryEvery(env.Config.Retry.Delay, 2).
		RateLimit(env.Config.Limiter()).
		Delay(env.Pace).
		Do(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%d contacts stored\n", env.Svc.Count("contact")-before)
	return nil
}

func runNamed(ctx context.Context, env *Env) error {
	count := 0
	contact := service.NewEntity("contact")
	contact.Set("firstname", "Contact 0")

	_, err := env.Fluent.Create(contact).
		Log(env.Info(), "Creating 10 Contacts", "Done.").
		WhileEach(func() bool {
			count++
			return count <= 10
		}, func(id uuid.UUID) {
			fmt.Fprintf(env.Out, "Created %s => %s\n", contact.GetString("firstname"), id)
			contact.Set("firstname", fmt.Sprintf("Contact %d", count))
		}).
		Log(func(msg string) { fmt.Fprint(env.Out, msg) }, "<", ">").
		RetryEvery(env.Config.Retry.Delay, 2).
		Delay(env.Pace).
		Do(ctx)
	return err
}

func runFirst(ctx context.Context, env *Env) error {
	result, err := service.FirstOrDefault(
		env.Fluent.RetrieveMultiple(service.Query{
			EntityName: "contact",
			ColumnSet:  service.Columns("firstname"),
			Conditions: []service.Condition{{Attribute: "firstname", Value: "result"}},
		}).WithCache(env.Collections).Cache("contact:firstname=result"),
	).Do(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Retrieved Contact with name  = %s\n", result.GetString("firstname"))
	return nil
}

func runAsync(ctx context.Context, env *Env) error {
	found, err := service.First(env.Fluent.RetrieveMultiple(service.Query{EntityName: "contact"})).Do(ctx)
	if err != nil {
		return err
	}

	env.Svc.FailNext(1, errUnavailable)
	patch := service.Entity{LogicalName: "contact", ID: found.ID}
	patch.Set("lastname", "Updated")

	update := env.Fluent.Update(patch).
		RunAsync(func(err error) {
			if err != nil {
				env.Errors()(err)
				return
			}
			fmt.Fprintln(env.Out, "background update completed")
		}).
		Retry()
	defer update.Close()

	if err := update.Do(ctx); err != nil {
		return err
	}
	fmt.Fprintln(env.Out, "update dispatched")
	update.Wait()
	return nil
}

func runGuarded(ctx context.Context, env *Env) error {
	found, err := service.First(env.Fluent.RetrieveMultiple(service.Query{EntityName: "contact"})).Do(ctx)
	if err != nil {
		return err
	}

	breaker := chainz.NewBreaker(2, time.Minute)
	pool := chainz.NewPool(2)
	offline := func(context.Context) (service.Entity, error) {
		fmt.Fprintln(env.Out, "served from offline copy")
		return found, nil
	}

	env.Svc.FailNext(2, errUnavailable)
	before := env.Svc.Calls()
	for i := 1; i <= 4; i++ {
		contact, err := env.Fluent.Retrieve("contact", found.ID, service.AllColumns()).
			Fallback(offline).
			CircuitBreaker(breaker).
			Pooled(pool).
			Timeout(time.Second).
			Do(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "read %d: %s (breaker %s)\n", i, contact.GetString("firstname"), breaker.State())
	}
	fmt.Fprintf(env.Out, "service called %d times\n", env.Svc.Calls()-before)
	return nil
}

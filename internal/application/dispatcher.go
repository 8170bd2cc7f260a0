// Package application wires the Content Conditioning Core's components
// (C1-C13) into the service facade spec.md §6 exposes to surrounding code:
// create_campaign, start_collection, start_analysis, generate_draft,
// register_post, get_community_profile, subscribe_task_progress.
package application

import "context"

// Dispatcher hands a unit of work to the worker tier (spec.md §5: "parallel
// workers pulling from a task queue"). The request-handler tier (this
// package's services) only mints a task id, records its PENDING state, and
// enqueues; it never runs the long pipeline itself.
type Dispatcher interface {
	Enqueue(work func(ctx context.Context))
}

// DispatcherFunc adapts a plain function to a Dispatcher, primarily for
// tests that want work to run synchronously and inline.
type DispatcherFunc func(work func(ctx context.Context))

func (f DispatcherFunc) Enqueue(work func(ctx context.Context)) { f(work) }

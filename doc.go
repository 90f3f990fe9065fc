// Package st8 provides a small state container with a composable
// middleware pipeline in front of its dispatch entry point.
//
// A [Store] holds state that only changes when an [Action] is dispatched
// through a [Reducer]. [ApplyMiddleware] turns an ordered list of
// [Interceptor] constructors into an [Enhancer] that replaces the store's
// Dispatch with a composed chain, so middleware can observe, transform,
// delay, short-circuit or fan out actions before the reducer runs.
package st8

// Package engine orchestrates one persona conversation session: it appends
// the user's message to the transcript, composes the model request, invokes
// the gateway, appends the reply, and persists after every append.
//
// Invariants:
//   - The transcript is append-only; a failed exchange never appends an
//     assistant message and never removes the user's.
//   - Per session the flow is strictly sequential: a second send while one is
//     awaiting a reply is rejected, not interleaved.
//   - Both the user message and the assistant reply are persisted immediately
//     on append, so a crash between the two loses nothing.
//
// Flow per exchange:
//
//	Idle -> AwaitingReply -> Idle (success)
//	Idle -> AwaitingReply -> Failed (error surfaced to the caller)
package engine

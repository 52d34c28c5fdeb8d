// Package chat handles a question from an authenticated user end to end:
// entitlement check, answer generation, message persistence and usage
// recording.
//
//	svc := chat.NewService(resolver, answer.NewGenerator(), chat.NewMemoryStore())
//	msg, err := svc.Send(ctx, userID, "What is an API?")
//	if errors.Is(err, entitlement.ErrSubscriptionRequired) {
//		// ask the user to subscribe
//	}
package chat

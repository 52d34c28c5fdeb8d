// Package answer produces canned chat answers and a token estimate.
//
// It stands in for a language model: Generate matches the question against
// a fixed list of keywords and returns the first matching reply. Generator
// adds a randomized delay to mimic model latency.
//
//	gen := answer.NewGenerator(answer.WithLatency(500*time.Millisecond, 2*time.Second))
//	text, tokens, err := gen.Generate(ctx, "What is an API?")
package answer

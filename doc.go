// Package orpheus is a client for OpenAI-compatible chat completion and
// embeddings APIs.
//
// Credentials resolve once at construction time, from explicit options
// first and environment variables second:
//
//	client, err := orpheus.New()
//
// Conversations are typed and validated before they hit the wire:
//
//	msgs, err := schema.NewMessages([]schema.Message{
//		schema.SystemMessage("be brief"),
//		schema.UserMessage("hi"),
//	})
//	resp, err := client.Chat.Completions.Create(ctx, "gpt-4o-mini", msgs)
//
// Streaming uses io.EOF as the terminal marker, or range over All:
//
//	stream, err := client.Chat.Completions.Stream(ctx, model, msgs)
//	for chunk, err := range stream.All() { ... }
package orpheus

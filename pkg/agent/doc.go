// Package agent executes chat turns against a hosted LLM provider.
//
// Invariants:
// - Each Send issues at most one remote call and never returns a Go error.
// - Session history changes only after a successful provider call.
// - Provider failures cross the package boundary as *ProviderError values with a Reason.
// - Describe is the only place that turns errors into user-facing text.
//
// Usage:
//
//	provider, _ := (&agent.ProviderFactory{}).NewProvider(ctx, agent.AuthProfile{Provider: "gemini", APIKey: key})
//	exec, _ := agent.NewExecutor(agent.Config{Provider: provider, Agent: agent.DefaultConfig()})
//	outcome := exec.Send(ctx, session.Start(), "hello")
//	_ = outcome
package agent

// Package model parses "provider/name" model identifiers and prices token usage.
//
//	ref, err := model.Parse("ollama/devstral-64k")
//	// ref.Provider == ai.ProviderOllama, ref.Name == "devstral-64k"
//
//	cost := model.Lookup(ref).Cost(usage)
//
// Unknown models and local backends price at zero.
package model

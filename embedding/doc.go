// Package embedding turns text into fixed-length, L2-normalized vectors.
//
// Embedder is the contract consumed by the document store. Hash is a
// deterministic placeholder suited to tests and offline use; OpenAI and
// Ollama adapt real models. Wrappers add token truncation (Truncating),
// rate limiting with a circuit breaker (Guarded) and a per-model lock
// (Serialized). New assembles an embedder from Config.
package embedding
